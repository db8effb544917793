package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit event types emitted by the publish pipeline.
const (
	EventPublishAttemptStarted    = "publish_attempt_started"
	EventComplianceCheckStarted   = "compliance_check_started"
	EventComplianceCheckCompleted = "compliance_check_completed"
	EventPublishSuccess           = "publish_success"
	EventPublishFailed            = "publish_failed"
	EventPublishError             = "publish_error"
)

// AuditLog is an append-only record of a pipeline lifecycle occurrence.
// Entries are never mutated or deleted by this service; retention is an
// external concern.
type AuditLog struct {
	ID              uuid.UUID  `db:"id"               json:"id"`
	EventType       string     `db:"event_type"       json:"event_type"`
	ArticleID       *uuid.UUID `db:"article_id"       json:"article_id,omitempty"`
	DestinationName *string    `db:"destination_name" json:"destination_name,omitempty"`
	Context         JSONMap    `db:"context"          json:"context"`
	CreatedAt       time.Time  `db:"created_at"       json:"created_at"`
}
