package enrich

import (
	"context"
	"fmt"

	"github.com/avolkau/librarium/internal/entities"
)

// BookUpdater is the storage surface the enricher needs.
type BookUpdater interface {
	GetBookByID(id uint) (*entities.Book, error)
	UpdateBookFields(id uint, fields map[string]any) error
}

// CoverInvalidator drops a cached cover when the cover URL changes.
type CoverInvalidator interface {
	InvalidateCover(bookID uint) error
}

// Result describes what an enrichment run changed.
type Result struct {
	Book          *entities.Book `json:"book"`
	FieldsUpdated []string       `json:"fields_updated"`
}

// Enricher applies provider suggestions to catalog records. Values a
// librarian entered manually always win: only empty fields are filled.
type Enricher struct {
	provider         Provider
	db               BookUpdater
	coverInvalidator CoverInvalidator
}

func NewEnricher(provider Provider, db BookUpdater) *Enricher {
	return &Enricher{
		provider: provider,
		db:       db,
	}
}

// SetCoverInvalidator sets the cover cache invalidator (optional).
func (e *Enricher) SetCoverInvalidator(invalidator CoverInvalidator) {
	e.coverInvalidator = invalidator
}

// Suggest fetches metadata for a title without touching storage. Used
// by the form-assist endpoint before a book exists.
func (e *Enricher) Suggest(ctx context.Context, title, author string) (*BookMetadata, error) {
	return e.provider.SuggestByTitle(ctx, title, author)
}

// EnrichBook fetches suggestions for a stored book and fills its empty
// fields.
func (e *Enricher) EnrichBook(ctx context.Context, bookID uint) (*Result, error) {
	book, err := e.db.GetBookByID(bookID)
	if err != nil {
		return nil, fmt.Errorf("get book: %w", err)
	}

	metadata, err := e.provider.SuggestByTitle(ctx, book.Title, book.Author)
	if err != nil {
		return nil, fmt.Errorf("suggestion failed: %w", err)
	}

	updates, fieldsUpdated := buildUpdates(book, metadata)

	if len(fieldsUpdated) > 0 {
		if _, changed := updates["cover_url"]; changed && e.coverInvalidator != nil {
			_ = e.coverInvalidator.InvalidateCover(bookID)
		}

		if err := e.db.UpdateBookFields(bookID, updates); err != nil {
			return nil, fmt.Errorf("update book: %w", err)
		}

		book, err = e.db.GetBookByID(bookID)
		if err != nil {
			return nil, fmt.Errorf("refresh book: %w", err)
		}
	}

	return &Result{
		Book:          book,
		FieldsUpdated: fieldsUpdated,
	}, nil
}

// buildUpdates returns column updates for fields the book is missing
// and the provider suggested. Fields already set are left alone.
func buildUpdates(book *entities.Book, metadata *BookMetadata) (map[string]any, []string) {
	updates := map[string]any{}
	var fieldsUpdated []string

	if book.Author == "" && metadata.Author != "" {
		updates["author"] = metadata.Author
		fieldsUpdated = append(fieldsUpdated, "author")
	}
	if book.Genre == "" && metadata.Genre != "" {
		updates["genre"] = metadata.Genre
		fieldsUpdated = append(fieldsUpdated, "genre")
	}
	if book.Description == "" && metadata.Description != "" {
		updates["description"] = metadata.Description
		fieldsUpdated = append(fieldsUpdated, "description")
	}
	if book.CoverURL == "" && metadata.CoverURL != "" {
		updates["cover_url"] = metadata.CoverURL
		fieldsUpdated = append(fieldsUpdated, "cover_url")
	}

	return updates, fieldsUpdated
}
