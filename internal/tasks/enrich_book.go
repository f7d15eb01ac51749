package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mikestefanello/backlite"
	log "github.com/sirupsen/logrus"

	"github.com/avolkau/librarium/internal/enrich"
)

// EnrichBookTask fills in a book's missing details from the suggestion
// provider.
type EnrichBookTask struct {
	BookID uint `json:"book_id"`
}

// Config returns the queue configuration for book enrichment tasks.
func (t EnrichBookTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "enrich_book",
		MaxAttempts: 3,
		Backoff:     30 * time.Second,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// EnrichAuditor records enrichment outcomes against a book, keyed by
// the acting user. Background runs use user ID 0.
type EnrichAuditor interface {
	LogEnrich(userID, bookID uint, description string, err error)
}

// EnrichBookProcessor creates a processor function for EnrichBookTask.
// The auditor is optional.
func EnrichBookProcessor(enricher *enrich.Enricher, auditor EnrichAuditor) backlite.QueueProcessor[EnrichBookTask] {
	return func(ctx context.Context, task EnrichBookTask) error {
		if enricher == nil {
			return fmt.Errorf("enricher not configured")
		}

		result, err := enricher.EnrichBook(ctx, task.BookID)
		if err != nil {
			// No provider key means no amount of retries will help.
			if errors.Is(err, enrich.ErrNotConfigured) {
				log.Printf("[TASK] Skipping enrichment of book %d: provider not configured", task.BookID)
				return nil
			}
			if auditor != nil {
				auditor.LogEnrich(0, task.BookID, "Enrichment failed", err)
			}
			return fmt.Errorf("enrich book %d: %w", task.BookID, err)
		}

		description := "Enrichment ran: nothing to fill"
		if len(result.FieldsUpdated) > 0 {
			description = fmt.Sprintf("Enrichment filled %s", strings.Join(result.FieldsUpdated, ", "))
			log.Printf("[TASK] Enriched book %d (%s): filled %v",
				task.BookID, result.Book.Title, result.FieldsUpdated)
		} else {
			log.Printf("[TASK] Book %d (%s): nothing to fill",
				task.BookID, result.Book.Title)
		}

		if auditor != nil {
			auditor.LogEnrich(0, task.BookID, description, nil)
		}
		return nil
	}
}

// NewEnrichBookQueue creates a backlite queue for book enrichment tasks.
func NewEnrichBookQueue(enricher *enrich.Enricher, auditor EnrichAuditor) backlite.Queue {
	return backlite.NewQueue(EnrichBookProcessor(enricher, auditor))
}
