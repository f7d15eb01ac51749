package entities

import "time"

type AuditEventType string

const (
	AuditEventIssue   AuditEventType = "issue"
	AuditEventReturn  AuditEventType = "return"
	AuditEventDelete  AuditEventType = "delete"
	AuditEventEnrich  AuditEventType = "enrich"
	AuditEventAuth    AuditEventType = "auth"
	AuditEventOverdue AuditEventType = "overdue"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is an append-only record of a lending or account action.
type AuditEvent struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	UserID      uint           `gorm:"index" json:"user_id"`
	EventType   AuditEventType `gorm:"index;size:50" json:"event_type"`
	Action      string         `gorm:"size:100" json:"action"`      // e.g., "book_issue", "book_return"
	Description string         `gorm:"size:500" json:"description"` // Human-readable summary
	BookID      *uint          `gorm:"index" json:"book_id,omitempty"`
	Metadata    string         `gorm:"type:text" json:"metadata,omitempty"` // JSON for extra data
	Status      AuditStatus    `gorm:"size:20" json:"status"`
	ErrorMsg    string         `gorm:"size:500" json:"error_msg,omitempty"`
	CreatedAt   time.Time      `gorm:"index" json:"created_at"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}
