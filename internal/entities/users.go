package entities

import (
	"time"

	"gorm.io/gorm"
)

// UserRole is the closed set of roles a user can hold. Every decision
// point switching on a role must handle both values exhaustively.
type UserRole string

const (
	UserRoleAdmin   UserRole = "admin"
	UserRoleStudent UserRole = "student"
)

// Valid reports whether the role is one of the known values.
func (r UserRole) Valid() bool {
	switch r {
	case UserRoleAdmin, UserRoleStudent:
		return true
	}
	return false
}

type User struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	LibraryID    string         `gorm:"uniqueIndex;size:64" json:"library_id"`
	Name         string         `gorm:"size:256" json:"name"`
	PasswordHash string         `gorm:"size:128" json:"-"`
	Role         UserRole       `gorm:"size:16;index" json:"role"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
