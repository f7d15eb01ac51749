package catalog

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/avolkau/librarium/internal/entities"
)

var (
	ErrBookNotFound  = errors.New("book not found")
	ErrAlreadyIssued = errors.New("book is already issued")
	ErrNotIssued     = errors.New("book is not issued")
	ErrTitleRequired = errors.New("title is required")
)

// BookStore is the storage the catalog service operates on.
type BookStore interface {
	CreateBook(book *entities.Book) error
	GetBookByID(id uint) (*entities.Book, error)
	GetAllBooks() ([]entities.Book, error)
	GetIssuedBooks() ([]entities.Book, error)
	GetBooksIssuedTo(userID uint) ([]entities.Book, error)
	UpdateBookFields(id uint, fields map[string]any) error
	MarkIssued(bookID, userID uint, at time.Time) error
	MarkReturned(bookID uint) error
	DeleteBook(id uint) error
}

// AuditLogger records lending lifecycle events. Optional.
type AuditLogger interface {
	LogIssue(userID, bookID uint, title string)
	LogReturn(actorID, bookID uint, title string)
	LogDelete(actorID, bookID uint, title string, wasIssued bool)
}

// Loan is the derived view of an issued book: due date and fine are
// computed from the issue timestamp at read time, never persisted.
type Loan struct {
	Book        entities.Book `json:"book"`
	IssuedTo    uint          `json:"issued_to_user_id"`
	IssuedAt    time.Time     `json:"issued_at"`
	DueDate     time.Time     `json:"due_date"`
	OverdueDays int           `json:"overdue_days"`
	Fine        int           `json:"fine"`
}

// Service coordinates the catalog and its lending state machine.
type Service struct {
	store BookStore
	terms Terms
	audit AuditLogger
	now   func() time.Time
}

// NewService creates a catalog service using the wall clock.
func NewService(store BookStore, terms Terms) *Service {
	return &Service{
		store: store,
		terms: terms,
		now:   time.Now,
	}
}

// SetAuditLogger attaches a lending audit logger (optional).
func (s *Service) SetAuditLogger(a AuditLogger) {
	s.audit = a
}

// SetClock overrides the clock, for tests.
func (s *Service) SetClock(now func() time.Time) {
	s.now = now
}

// Terms returns the lending terms the service derives fines from.
func (s *Service) Terms() Terms {
	return s.terms
}

// CreateBook validates and persists a new catalog entry. Lending
// fields always start clear regardless of input.
func (s *Service) CreateBook(book *entities.Book) error {
	if book.Title == "" {
		return ErrTitleRequired
	}
	book.IsIssued = false
	book.IssuedTo = nil
	book.IssuedAt = nil
	return s.store.CreateBook(book)
}

// GetBook retrieves a single book.
func (s *Service) GetBook(id uint) (*entities.Book, error) {
	book, err := s.store.GetBookByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return book, nil
}

// ListBooks returns the catalog, optionally filtered by a search query.
func (s *Service) ListBooks(query string) ([]entities.Book, error) {
	books, err := s.store.GetAllBooks()
	if err != nil {
		return nil, err
	}
	return Search(books, query), nil
}

// UpdateBook updates catalog metadata. It does not touch lending state,
// and editing is allowed while the book is on loan.
func (s *Service) UpdateBook(id uint, fields map[string]any) error {
	if title, ok := fields["title"]; ok {
		if str, isStr := title.(string); isStr && str == "" {
			return ErrTitleRequired
		}
	}
	err := s.store.UpdateBookFields(id, fields)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrBookNotFound
	}
	return err
}

// IssueBook transitions an available book to the issued state for the
// acting user. Issuing an already-issued book is rejected and leaves
// its lending fields untouched.
func (s *Service) IssueBook(bookID, userID uint) (*entities.Book, error) {
	book, err := s.GetBook(bookID)
	if err != nil {
		return nil, err
	}
	if book.IsIssued {
		return nil, ErrAlreadyIssued
	}

	if err := s.store.MarkIssued(bookID, userID, s.now()); err != nil {
		// The book was issued between the read and the update.
		return nil, ErrAlreadyIssued
	}

	if s.audit != nil {
		s.audit.LogIssue(userID, bookID, book.Title)
	}

	return s.GetBook(bookID)
}

// ReturnBook clears a book's loan state back to available. This is the
// only way out of the ISSUED state; role enforcement (admin only) is
// the transport layer's job.
func (s *Service) ReturnBook(bookID, actorID uint) (*entities.Book, error) {
	book, err := s.GetBook(bookID)
	if err != nil {
		return nil, err
	}
	if !book.IsIssued {
		return nil, ErrNotIssued
	}

	if err := s.store.MarkReturned(bookID); err != nil {
		return nil, ErrNotIssued
	}

	if s.audit != nil {
		s.audit.LogReturn(actorID, bookID, book.Title)
	}

	return s.GetBook(bookID)
}

// DeleteBook removes a book in either lending state. Removing a book
// that is on loan is permitted; the active loan is recorded in the
// audit trail so the physical copy can still be chased.
func (s *Service) DeleteBook(bookID, actorID uint) error {
	book, err := s.GetBook(bookID)
	if err != nil {
		return err
	}

	if err := s.store.DeleteBook(bookID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBookNotFound
		}
		return fmt.Errorf("delete book: %w", err)
	}

	if s.audit != nil {
		s.audit.LogDelete(actorID, bookID, book.Title, book.IsIssued)
	}

	return nil
}

// LoansFor returns the active loans of one user with derived fines.
func (s *Service) LoansFor(userID uint) ([]Loan, error) {
	books, err := s.store.GetBooksIssuedTo(userID)
	if err != nil {
		return nil, err
	}
	return s.loansView(books), nil
}

// AllLoans returns every active loan with derived fines.
func (s *Service) AllLoans() ([]Loan, error) {
	books, err := s.store.GetIssuedBooks()
	if err != nil {
		return nil, err
	}
	return s.loansView(books), nil
}

func (s *Service) loansView(books []entities.Book) []Loan {
	now := s.now()
	loans := make([]Loan, 0, len(books))
	for _, b := range books {
		if b.IssuedTo == nil || b.IssuedAt == nil {
			continue
		}
		loans = append(loans, Loan{
			Book:        b,
			IssuedTo:    *b.IssuedTo,
			IssuedAt:    *b.IssuedAt,
			DueDate:     s.terms.DueDate(*b.IssuedAt),
			OverdueDays: s.terms.OverdueDays(*b.IssuedAt, now),
			Fine:        s.terms.Fine(*b.IssuedAt, now),
		})
	}
	return loans
}
