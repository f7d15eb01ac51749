// Package catalog implements the book lending lifecycle: the
// AVAILABLE/ISSUED state machine, derived-on-read fine computation and
// catalog search. Fines are never stored; they are a pure function of
// the issue timestamp and the caller-supplied clock.
package catalog

import (
	"strings"
	"time"

	"github.com/avolkau/librarium/internal/entities"
)

// Terms holds the lending parameters fines are derived from.
type Terms struct {
	LoanPeriod    time.Duration
	DailyFineRate int
}

// DefaultTerms returns the standard seven-day loan with a flat daily fine.
func DefaultTerms() Terms {
	return Terms{
		LoanPeriod:    7 * 24 * time.Hour,
		DailyFineRate: 5,
	}
}

// DueDate returns when a book issued at issuedAt must be returned.
func (t Terms) DueDate(issuedAt time.Time) time.Time {
	return issuedAt.Add(t.LoanPeriod)
}

// OverdueDays returns how many fine-accruing days have passed at now.
// A partial day past the due date counts as a full day.
func (t Terms) OverdueDays(issuedAt, now time.Time) int {
	due := t.DueDate(issuedAt)
	if !now.After(due) {
		return 0
	}
	const day = 24 * time.Hour
	late := now.Sub(due)
	days := int(late / day)
	if late%day != 0 {
		days++
	}
	return days
}

// Fine returns the accrued fine at now for a book issued at issuedAt.
func (t Terms) Fine(issuedAt, now time.Time) int {
	return t.OverdueDays(issuedAt, now) * t.DailyFineRate
}

// Search filters books by a case-insensitive substring match against
// title, author and genre. The underlying collection order is kept;
// an empty query matches everything.
func Search(books []entities.Book, query string) []entities.Book {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return books
	}

	matched := make([]entities.Book, 0, len(books))
	for _, b := range books {
		if strings.Contains(strings.ToLower(b.Title), query) ||
			strings.Contains(strings.ToLower(b.Author), query) ||
			strings.Contains(strings.ToLower(b.Genre), query) {
			matched = append(matched, b)
		}
	}
	return matched
}
