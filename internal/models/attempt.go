package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// AttemptStatus represents the state of a publish attempt.
type AttemptStatus string

const (
	AttemptStatusPending AttemptStatus = "pending"
	AttemptStatusSuccess AttemptStatus = "success"
	AttemptStatusFailed  AttemptStatus = "failed"
)

// Error codes recorded on failed attempts.
const (
	ErrorCodeComplianceFailed       = "compliance_failed"
	ErrorCodeDestinationUnavailable = "destination_unavailable"
	ErrorCodeUnknownFamily          = "unknown_family"
	ErrorCodeProtocolRejected       = "protocol_rejected"
	ErrorCodeDeliveryFailed         = "delivery_failed"
)

// ErrorDetails is the structured error payload recorded on a failed attempt.
type ErrorDetails struct {
	Message      string                 `json:"message"`
	FailedChecks map[string]CheckResult `json:"failed_checks,omitempty"`
	Code         string                 `json:"code"`
	Trace        string                 `json:"trace,omitempty"`
}

// Value implements driver.Valuer for JSONB storage.
func (e *ErrorDetails) Value() (driver.Value, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

// Scan implements sql.Scanner.
func (e *ErrorDetails) Scan(src any) error {
	if src == nil {
		return nil
	}
	data, err := jsonColumnBytes(src)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, e)
}

// PublishAttempt is the durable record of one attempt to distribute one
// article to one destination. Created pending, finalized exactly once.
//
// Invariants: CompletedAt is set iff Status != pending; ExternalID is set
// iff Status == success.
type PublishAttempt struct {
	ID                uuid.UUID     `db:"id"                 json:"id"`
	ArticleID         uuid.UUID     `db:"article_id"         json:"article_id"`
	DestinationName   string        `db:"destination_name"   json:"destination_name"`
	Status            AttemptStatus `db:"status"             json:"status"`
	ComplianceResults ResultSet     `db:"compliance_results" json:"compliance_results"`
	ErrorDetails      *ErrorDetails `db:"error_details"      json:"error_details,omitempty"`
	AttemptedAt       time.Time     `db:"attempted_at"       json:"attempted_at"`
	CompletedAt       *time.Time    `db:"completed_at"       json:"completed_at,omitempty"`
	ExternalID        *string       `db:"external_id"        json:"external_id,omitempty"`
}

// AttemptFilter represents filter criteria for querying publish attempts.
type AttemptFilter struct {
	DestinationName string     `form:"destination_name"`
	ArticleID       string     `form:"article_id"`
	Status          string     `form:"status"`
	Since           *time.Time `form:"since" time_format:"2006-01-02T15:04:05Z07:00"`
	Until           *time.Time `form:"until" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit           int        `binding:"omitempty,min=1,max=1000" form:"limit"` // Default 100
	Offset          int        `binding:"omitempty,min=0"          form:"offset"`
}
