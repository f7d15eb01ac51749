package audit

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	auditRepo "github.com/avolkau/librarium/internal/database/audit"
	"github.com/avolkau/librarium/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(&entities.AuditEvent{}))

	repo := auditRepo.NewRepository(db)
	return NewService(repo), db
}

func waitForEvent(t *testing.T, db *gorm.DB, action string) entities.AuditEvent {
	t.Helper()

	var event entities.AuditEvent
	for i := 0; i < 50; i++ {
		if err := db.Where("action = ?", action).First(&event).Error; err == nil {
			return event
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("event %q was not recorded", action)
	return event
}

func TestService_LogIssue(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogIssue(3, 42, "The Great Gatsby")

	event := waitForEvent(t, db, "book_issue")
	assert.Equal(t, entities.AuditEventIssue, event.EventType)
	assert.Equal(t, uint(3), event.UserID)
	require.NotNil(t, event.BookID)
	assert.Equal(t, uint(42), *event.BookID)
	assert.Contains(t, event.Description, "The Great Gatsby")
}

func TestService_LogReturn(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogReturn(1, 42, "The Great Gatsby")

	event := waitForEvent(t, db, "book_return")
	assert.Equal(t, entities.AuditEventReturn, event.EventType)
	assert.Equal(t, entities.AuditStatusSuccess, event.Status)
}

func TestService_LogDelete_FlagsIssuedBooks(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogDelete(1, 42, "Dune", true)

	event := waitForEvent(t, db, "book_delete")
	assert.Contains(t, event.Description, "still issued")
}

func TestService_LogEnrich_Failure(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogEnrich(1, 42, "Enrichment run", errors.New("upstream timeout"))

	event := waitForEvent(t, db, "book_enrich")
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
	assert.Contains(t, event.ErrorMsg, "upstream timeout")
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth(0, "login_failed", false)

	event := waitForEvent(t, db, "login_failed")
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
}

func TestService_ArchiveDeleted_NoArchiver(t *testing.T) {
	svc, _ := setupTestService(t)

	// Without an archiver this is a no-op, not a panic.
	svc.ArchiveDeleted(map[string]string{"title": "Dune"})
}

func TestService_ArchiveDeleted(t *testing.T) {
	svc, _ := setupTestService(t)
	svc.SetArchiver(NewArchiver(t.TempDir()))

	svc.ArchiveDeleted(map[string]string{"title": "Dune"})
}
