// Package users provides database operations for the user roster.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByLibraryID(libraryID)
package users

import (
	"errors"

	"gorm.io/gorm"

	"github.com/avolkau/librarium/internal/entities"
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateUser persists a new user record.
func (r *Repository) CreateUser(user *entities.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(id uint) (*entities.User, error) {
	var user entities.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByLibraryID retrieves a user by their library card identifier.
func (r *Repository) GetUserByLibraryID(libraryID string) (*entities.User, error) {
	var user entities.User
	if err := r.db.Where("library_id = ?", libraryID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// LibraryIDTaken reports whether any user of any role already holds the
// identifier. excludeID skips one user, for identifier edits.
func (r *Repository) LibraryIDTaken(libraryID string, excludeID uint) (bool, error) {
	var existing entities.User
	query := r.db.Where("library_id = ?", libraryID)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	err := query.First(&existing).Error
	if err == nil {
		return true, nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	return false, err
}

// GetAllUsers returns the full roster in insertion order.
func (r *Repository) GetAllUsers() ([]entities.User, error) {
	var users []entities.User
	err := r.db.Order("id ASC").Find(&users).Error
	return users, err
}

// UpdateUserFields updates user fields by ID.
func (r *Repository) UpdateUserFields(id uint, fields map[string]any) error {
	result := r.db.Model(&entities.User{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteUser removes a user from the roster.
func (r *Repository) DeleteUser(id uint) error {
	result := r.db.Delete(&entities.User{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// CountUsers returns the number of users in the roster.
func (r *Repository) CountUsers() (int64, error) {
	var count int64
	err := r.db.Model(&entities.User{}).Count(&count).Error
	return count, err
}
