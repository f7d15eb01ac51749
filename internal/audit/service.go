package audit

import (
	log "github.com/sirupsen/logrus"

	"github.com/avolkau/librarium/internal/database/audit"
	"github.com/avolkau/librarium/internal/entities"
)

// Service provides high-level audit logging.
type Service struct {
	repo     *audit.Repository
	archiver *Archiver
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// SetArchiver enables JSON snapshots of deleted records (optional).
func (s *Service) SetArchiver(archiver *Archiver) {
	s.archiver = archiver
}

// Log records a generic audit event.
func (s *Service) Log(event *entities.AuditEvent) error {
	return s.repo.LogEvent(event)
}

// LogAsync records an audit event in the background (non-blocking).
func (s *Service) LogAsync(event *entities.AuditEvent) {
	go func() {
		if err := s.repo.LogEvent(event); err != nil {
			log.Printf("Failed to log audit event: %v", err)
		}
	}()
}

// LogIssue records a book being handed to a member.
func (s *Service) LogIssue(userID, bookID uint, title string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventIssue,
		Action:      "book_issue",
		Description: "Issued book: " + title,
		BookID:      &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogReturn records a book coming back to the shelf.
func (s *Service) LogReturn(actorID, bookID uint, title string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      actorID,
		EventType:   entities.AuditEventReturn,
		Action:      "book_return",
		Description: "Returned book: " + title,
		BookID:      &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogDelete records a book being removed from the catalog. Books that
// were still issued at deletion are flagged in the description.
func (s *Service) LogDelete(actorID, bookID uint, title string, wasIssued bool) {
	description := "Deleted book: " + title
	if wasIssued {
		description += " (still issued)"
	}

	s.LogAsync(&entities.AuditEvent{
		UserID:      actorID,
		EventType:   entities.AuditEventDelete,
		Action:      "book_delete",
		Description: description,
		BookID:      &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// LogAuth records a login or logout attempt.
func (s *Service) LogAuth(userID uint, action string, success bool) {
	status := entities.AuditStatusSuccess
	if !success {
		status = entities.AuditStatusFailed
	}

	s.LogAsync(&entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		Status:    status,
	})
}

// LogEnrich records an enrichment run against a book.
func (s *Service) LogEnrich(userID, bookID uint, description string, err error) {
	event := &entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventEnrich,
		Action:      "book_enrich",
		Description: description,
		BookID:      &bookID,
		Status:      entities.AuditStatusSuccess,
	}

	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}

	s.LogAsync(event)
}

// LogOverdue records an overdue loan found by the sweep.
func (s *Service) LogOverdue(userID, bookID uint, description string) {
	s.LogAsync(&entities.AuditEvent{
		UserID:      userID,
		EventType:   entities.AuditEventOverdue,
		Action:      "loan_overdue",
		Description: description,
		BookID:      &bookID,
		Status:      entities.AuditStatusSuccess,
	})
}

// ArchiveDeleted snapshots a record that is about to be removed.
// Best effort: a failed archive never blocks the deletion.
func (s *Service) ArchiveDeleted(record any) {
	if s.archiver == nil {
		return
	}
	if _, err := s.archiver.SaveJSON(record); err != nil {
		log.Printf("Failed to archive deleted record: %v", err)
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
