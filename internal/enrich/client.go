// Package enrich fills in missing book details from an external
// generative model. Enrichment is best effort: a failure never blocks
// catalog operations, and fields already set by a librarian are never
// overwritten.
package enrich

import (
	"context"
	"errors"
)

var (
	// ErrNotConfigured is returned when no API key is set.
	ErrNotConfigured = errors.New("enrichment provider is not configured")
	// ErrUnavailable is returned when the upstream service fails.
	ErrUnavailable = errors.New("enrichment provider is unavailable")
)

// BookMetadata contains the suggested book details from a provider.
// Empty fields mean the provider had no suggestion.
type BookMetadata struct {
	Author      string `json:"author,omitempty"`
	Genre       string `json:"genre,omitempty"`
	Description string `json:"description,omitempty"`
	CoverURL    string `json:"cover_url,omitempty"`
}

// Provider fetches book metadata from an external source.
type Provider interface {
	SuggestByTitle(ctx context.Context, title, author string) (*BookMetadata, error)
}
