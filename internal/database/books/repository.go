// Package books provides database operations for the book catalog.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	all, err := repo.GetAllBooks()
package books

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/avolkau/librarium/internal/entities"
)

// ErrStaleLendingState is returned when a conditional lending update
// matched no rows, meaning the book changed state since it was read.
var ErrStaleLendingState = errors.New("book lending state changed concurrently")

// Repository handles all book database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook persists a new catalog entry.
func (r *Repository) CreateBook(book *entities.Book) error {
	return r.db.Create(book).Error
}

// GetBookByID retrieves a book by ID.
func (r *Repository) GetBookByID(id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetAllBooks returns the full catalog in insertion order.
func (r *Repository) GetAllBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Order("id ASC").Find(&books).Error
	return books, err
}

// GetIssuedBooks returns all books currently on loan, in insertion order.
func (r *Repository) GetIssuedBooks() ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("is_issued = ?", true).Order("id ASC").Find(&books).Error
	return books, err
}

// GetBooksIssuedTo returns the books currently issued to one user.
func (r *Repository) GetBooksIssuedTo(userID uint) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.Where("is_issued = ? AND issued_to_user_id = ?", true, userID).
		Order("id ASC").Find(&books).Error
	return books, err
}

// UpdateBookFields updates catalog metadata for a book. Lending fields
// are never touched here; they change only through MarkIssued and
// MarkReturned.
func (r *Repository) UpdateBookFields(id uint, fields map[string]any) error {
	updates := make(map[string]any, len(fields))
	for key, value := range fields {
		switch key {
		case "is_issued", "issued_to_user_id", "issued_at":
			continue
		}
		updates[key] = value
	}

	result := r.db.Model(&entities.Book{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// MarkIssued transitions a book to the issued state. The update is
// conditional on the book still being available, so a book read as
// available but issued in the meantime is not issued twice.
func (r *Repository) MarkIssued(bookID, userID uint, at time.Time) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND is_issued = ?", bookID, false).
		Updates(map[string]any{
			"is_issued":         true,
			"issued_to_user_id": userID,
			"issued_at":         at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleLendingState
	}
	return nil
}

// MarkReturned clears a book's lending state back to available.
func (r *Repository) MarkReturned(bookID uint) error {
	result := r.db.Model(&entities.Book{}).
		Where("id = ? AND is_issued = ?", bookID, true).
		Updates(map[string]any{
			"is_issued":         false,
			"issued_to_user_id": nil,
			"issued_at":         nil,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleLendingState
	}
	return nil
}

// DeleteBook removes a book from the catalog in either lending state.
func (r *Repository) DeleteBook(id uint) error {
	result := r.db.Delete(&entities.Book{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
