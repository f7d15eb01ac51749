package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/avolkau/librarium/internal/entities"
)

func TestTerms_DueDate(t *testing.T) {
	terms := DefaultTerms()
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	due := terms.DueDate(issuedAt)

	assert.Equal(t, time.Date(2024, 3, 8, 10, 0, 0, 0, time.UTC), due)
}

func TestTerms_Fine_NotOverdue(t *testing.T) {
	terms := DefaultTerms()
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	// Issued 3 days ago: well within the loan period
	issuedAt := now.Add(-3 * 24 * time.Hour)

	assert.Zero(t, terms.OverdueDays(issuedAt, now))
	assert.Zero(t, terms.Fine(issuedAt, now))
}

func TestTerms_Fine_ExactlyDue(t *testing.T) {
	terms := DefaultTerms()
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	now := terms.DueDate(issuedAt)

	// At the due instant no fine has accrued yet
	assert.Zero(t, terms.Fine(issuedAt, now))
}

func TestTerms_Fine_FourteenDays(t *testing.T) {
	terms := DefaultTerms()
	now := time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)

	// Issued exactly 14 days ago: seven days overdue at 5 per day
	issuedAt := now.Add(-14 * 24 * time.Hour)

	assert.Equal(t, 7, terms.OverdueDays(issuedAt, now))
	assert.Equal(t, 35, terms.Fine(issuedAt, now))
}

func TestTerms_Fine_PartialDayRoundsUp(t *testing.T) {
	terms := DefaultTerms()
	issuedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	// One hour past the due date already counts as a full overdue day
	now := terms.DueDate(issuedAt).Add(time.Hour)

	assert.Equal(t, 1, terms.OverdueDays(issuedAt, now))
	assert.Equal(t, 5, terms.Fine(issuedAt, now))
}

func TestTerms_CustomRate(t *testing.T) {
	terms := Terms{LoanPeriod: 24 * time.Hour, DailyFineRate: 10}
	issuedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	now := issuedAt.Add(3 * 24 * time.Hour)

	assert.Equal(t, 2, terms.OverdueDays(issuedAt, now))
	assert.Equal(t, 20, terms.Fine(issuedAt, now))
}

func searchFixture() []entities.Book {
	return []entities.Book{
		{ID: 1, Title: "The Martian", Author: "Andy Weir", Genre: "Science Fiction"},
		{ID: 2, Title: "Pride and Prejudice", Author: "Jane Austen", Genre: "Romance"},
		{ID: 3, Title: "Romance of the Three Kingdoms", Author: "Luo Guanzhong", Genre: "Historical"},
		{ID: 4, Title: "Foundation", Author: "Isaac Asimov", Genre: "Science Fiction"},
	}
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	books := searchFixture()

	assert.Equal(t, books, Search(books, ""))
	assert.Equal(t, books, Search(books, "   "))
}

func TestSearch_GenreSubstringCaseInsensitive(t *testing.T) {
	books := searchFixture()

	// "romance" matches book 2 by genre and book 3 by title
	result := Search(books, "ROMANCE")

	assert.Len(t, result, 2)
	assert.Equal(t, uint(2), result[0].ID)
	assert.Equal(t, uint(3), result[1].ID)
}

func TestSearch_AuthorMatch(t *testing.T) {
	result := Search(searchFixture(), "asimov")

	assert.Len(t, result, 1)
	assert.Equal(t, "Foundation", result[0].Title)
}

func TestSearch_NoMatch(t *testing.T) {
	assert.Empty(t, Search(searchFixture(), "cooking"))
}

func TestSearch_PreservesCollectionOrder(t *testing.T) {
	result := Search(searchFixture(), "science fiction")

	assert.Len(t, result, 2)
	assert.Equal(t, uint(1), result[0].ID)
	assert.Equal(t, uint(4), result[1].ID)
}
