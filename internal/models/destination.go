package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Destination family identifiers. Each family enforces its own payload shape
// before delivery, independent of the authored compliance rules.
const (
	FamilyMSN        = "msn"
	FamilyGoogleNews = "google_news"
	FamilyAppleNews  = "apple_news"
)

// ValidFamily reports whether family names a supported destination family.
func ValidFamily(family string) bool {
	switch family {
	case FamilyMSN, FamilyGoogleNews, FamilyAppleNews:
		return true
	}
	return false
}

// Destination represents a named syndication target: which compliance rules
// it requires, whether it is accepting content, and how its payload is shaped.
type Destination struct {
	ID              uuid.UUID      `db:"id"               json:"id"`
	Name            string         `db:"name"             json:"name"`
	DisplayName     string         `db:"display_name"     json:"display_name"`
	Family          string         `db:"family"           json:"family"`
	Configuration   JSONMap        `db:"configuration"    json:"configuration"`
	ComplianceRules pq.StringArray `db:"compliance_rules" json:"compliance_rules"`
	Active          bool           `db:"active"           json:"active"`
	APIEndpoint     string         `db:"api_endpoint"     json:"api_endpoint"`
	APICredentials  JSONMap        `db:"api_credentials"  json:"-"`
	CreatedAt       time.Time      `db:"created_at"       json:"created_at"`
	UpdatedAt       time.Time      `db:"updated_at"       json:"updated_at"`
}

// DestinationCreateRequest represents the request payload for registering a
// destination.
type DestinationCreateRequest struct {
	Name            string   `binding:"required" json:"name"`
	DisplayName     string   `json:"display_name"`
	Family          string   `binding:"required" json:"family"`
	Configuration   JSONMap  `json:"configuration"`
	ComplianceRules []string `json:"compliance_rules"`
	Active          *bool    `json:"active"` // Defaults to true
	APIEndpoint     string   `json:"api_endpoint"`
	APICredentials  JSONMap  `json:"api_credentials"`
}

// DestinationUpdateRequest represents the request payload for updating a
// destination. Nil fields are left unchanged.
type DestinationUpdateRequest struct {
	DisplayName     *string  `json:"display_name"`
	Family          *string  `json:"family"`
	Configuration   JSONMap  `json:"configuration"`
	ComplianceRules []string `json:"compliance_rules"`
	Active          *bool    `json:"active"`
	APIEndpoint     *string  `json:"api_endpoint"`
	APICredentials  JSONMap  `json:"api_credentials"`
}

// Validate validates the destination update request.
func (r *DestinationUpdateRequest) Validate() error {
	if r.DisplayName == nil && r.Family == nil && r.Configuration == nil &&
		r.ComplianceRules == nil && r.Active == nil && r.APIEndpoint == nil &&
		r.APICredentials == nil {
		return ErrNoFieldsToUpdate
	}
	return nil
}
