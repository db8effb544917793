package models

import (
	"time"

	"github.com/google/uuid"
)

// ComplianceRule is an operator-authored binding of a validator kind plus
// parameters. Rules are shared across destinations; a destination references
// rules by name.
type ComplianceRule struct {
	ID          uuid.UUID `db:"id"          json:"id"`
	Name        string    `db:"name"        json:"name"`
	Validator   string    `db:"validator"   json:"validator"` // enumerated validator kind
	Parameters  JSONMap   `db:"parameters"  json:"parameters"`
	Description string    `db:"description" json:"description"`
	Active      bool      `db:"active"      json:"active"`
	Priority    int       `db:"priority"    json:"priority"` // lower runs first
	CreatedAt   time.Time `db:"created_at"  json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"  json:"updated_at"`
}

// RuleCreateRequest represents the request payload for creating a compliance
// rule.
type RuleCreateRequest struct {
	Name        string  `binding:"required" json:"name"`
	Validator   string  `binding:"required" json:"validator"`
	Parameters  JSONMap `json:"parameters"`
	Description string  `json:"description"`
	Active      *bool   `json:"active"` // Defaults to true
	Priority    *int    `binding:"omitempty,min=0" json:"priority"`
}

// RuleUpdateRequest represents the request payload for updating a compliance
// rule. Nil fields are left unchanged.
type RuleUpdateRequest struct {
	Validator   *string `json:"validator"`
	Parameters  JSONMap `json:"parameters"`
	Description *string `json:"description"`
	Active      *bool   `json:"active"`
	Priority    *int    `binding:"omitempty,min=0" json:"priority"`
}

// Validate validates the rule update request.
func (r *RuleUpdateRequest) Validate() error {
	if r.Validator == nil && r.Parameters == nil && r.Description == nil &&
		r.Active == nil && r.Priority == nil {
		return ErrNoFieldsToUpdate
	}
	return nil
}
