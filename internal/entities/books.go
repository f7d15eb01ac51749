package entities

import (
	"time"

	"gorm.io/gorm"
)

// Book is a catalog entry. The three lending fields move together:
// IsIssued is true iff IssuedToUserID and IssuedAt are both set.
type Book struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	Title       string         `gorm:"index;size:512" json:"title"`
	Author      string         `gorm:"index;size:256" json:"author"`
	Genre       string         `gorm:"index;size:128" json:"genre"`
	CoverURL    string         `gorm:"type:text" json:"cover_url,omitempty"`
	StandNumber string         `gorm:"size:64" json:"stand_number,omitempty"`
	Description string         `gorm:"type:text" json:"description,omitempty"`
	IsIssued    bool           `gorm:"index;default:false" json:"is_issued"`
	IssuedTo    *uint          `gorm:"column:issued_to_user_id;index" json:"issued_to_user_id,omitempty"`
	IssuedAt    *time.Time     `json:"issued_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// Available reports whether the book can be issued.
func (b *Book) Available() bool {
	return !b.IsIssued
}

// LendingConsistent verifies the lending-field invariant.
func (b *Book) LendingConsistent() bool {
	if b.IsIssued {
		return b.IssuedTo != nil && b.IssuedAt != nil
	}
	return b.IssuedTo == nil && b.IssuedAt == nil
}
