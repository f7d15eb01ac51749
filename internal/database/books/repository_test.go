package books

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/avolkau/librarium/internal/entities"
)

func setupTestDB(t *testing.T) (*Repository, func()) {
	dbPath := "./test_books_" + t.Name() + ".db"

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&entities.Book{})
	require.NoError(t, err)

	repo := NewRepository(db)

	cleanup := func() {
		sqlDB, _ := db.DB()
		sqlDB.Close()
		os.Remove(dbPath)
	}

	return repo, cleanup
}

func TestRepository_CreateBook(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune", Author: "Frank Herbert", Genre: "Sci-Fi"}
	require.NoError(t, repo.CreateBook(book))

	assert.NotZero(t, book.ID)
	assert.False(t, book.IsIssued)
	assert.True(t, book.LendingConsistent())
}

func TestRepository_GetAllBooks_InsertionOrder(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, repo.CreateBook(&entities.Book{Title: "First"}))
	require.NoError(t, repo.CreateBook(&entities.Book{Title: "Second"}))
	require.NoError(t, repo.CreateBook(&entities.Book{Title: "Third"}))

	books, err := repo.GetAllBooks()
	require.NoError(t, err)
	require.Len(t, books, 3)
	assert.Equal(t, "First", books[0].Title)
	assert.Equal(t, "Second", books[1].Title)
	assert.Equal(t, "Third", books[2].Title)
}

func TestRepository_MarkIssued(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune"}
	require.NoError(t, repo.CreateBook(book))

	issuedAt := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.MarkIssued(book.ID, 42, issuedAt))

	got, err := repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.True(t, got.IsIssued)
	require.NotNil(t, got.IssuedTo)
	assert.Equal(t, uint(42), *got.IssuedTo)
	require.NotNil(t, got.IssuedAt)
	assert.True(t, got.LendingConsistent())
}

func TestRepository_MarkIssued_AlreadyIssued(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune"}
	require.NoError(t, repo.CreateBook(book))
	require.NoError(t, repo.MarkIssued(book.ID, 42, time.Now()))

	err := repo.MarkIssued(book.ID, 99, time.Now())
	assert.ErrorIs(t, err, ErrStaleLendingState)

	// Lending fields are untouched by the rejected issue
	got, err := repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, uint(42), *got.IssuedTo)
}

func TestRepository_MarkReturned(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune"}
	require.NoError(t, repo.CreateBook(book))
	require.NoError(t, repo.MarkIssued(book.ID, 42, time.Now()))

	require.NoError(t, repo.MarkReturned(book.ID))

	got, err := repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.False(t, got.IsIssued)
	assert.Nil(t, got.IssuedTo)
	assert.Nil(t, got.IssuedAt)
	assert.True(t, got.LendingConsistent())
}

func TestRepository_MarkReturned_NotIssued(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune"}
	require.NoError(t, repo.CreateBook(book))

	err := repo.MarkReturned(book.ID)
	assert.ErrorIs(t, err, ErrStaleLendingState)
}

func TestRepository_UpdateBookFields_ProtectsLendingState(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune"}
	require.NoError(t, repo.CreateBook(book))
	require.NoError(t, repo.MarkIssued(book.ID, 42, time.Now()))

	err := repo.UpdateBookFields(book.ID, map[string]any{
		"title":     "Dune Messiah",
		"is_issued": false, // must be ignored
	})
	require.NoError(t, err)

	got, err := repo.GetBookByID(book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Dune Messiah", got.Title)
	assert.True(t, got.IsIssued)
}

func TestRepository_UpdateBookFields_DoesNotMutateInput(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune"}
	require.NoError(t, repo.CreateBook(book))

	fields := map[string]any{
		"title":     "Dune Messiah",
		"is_issued": true,
	}
	require.NoError(t, repo.UpdateBookFields(book.ID, fields))

	// The caller's map is left as given
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "is_issued")
}

func TestRepository_GetBooksIssuedTo(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	first := &entities.Book{Title: "First"}
	second := &entities.Book{Title: "Second"}
	third := &entities.Book{Title: "Third"}
	require.NoError(t, repo.CreateBook(first))
	require.NoError(t, repo.CreateBook(second))
	require.NoError(t, repo.CreateBook(third))

	require.NoError(t, repo.MarkIssued(first.ID, 7, time.Now()))
	require.NoError(t, repo.MarkIssued(third.ID, 7, time.Now()))
	require.NoError(t, repo.MarkIssued(second.ID, 8, time.Now()))

	books, err := repo.GetBooksIssuedTo(7)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, "First", books[0].Title)
	assert.Equal(t, "Third", books[1].Title)
}

func TestRepository_DeleteBook_WhileIssued(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	book := &entities.Book{Title: "Dune"}
	require.NoError(t, repo.CreateBook(book))
	require.NoError(t, repo.MarkIssued(book.ID, 42, time.Now()))

	// Deletion is allowed in either lending state
	require.NoError(t, repo.DeleteBook(book.ID))

	_, err := repo.GetBookByID(book.ID)
	assert.Error(t, err)
}

func TestRepository_DeleteBook_NotFound(t *testing.T) {
	repo, cleanup := setupTestDB(t)
	defer cleanup()

	err := repo.DeleteBook(12345)
	assert.Error(t, err)
}
