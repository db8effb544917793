package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/jonesrussell/feedgate/internal/models"
)

const destinationColumns = "id, name, display_name, family, configuration, compliance_rules, active, api_endpoint, api_credentials, created_at, updated_at"

// CreateDestination registers a new syndication destination
func (r *Repository) CreateDestination(ctx context.Context, req *models.DestinationCreateRequest) (*models.Destination, error) {
	dest := &models.Destination{
		ID:              uuid.New(),
		Name:            req.Name,
		DisplayName:     req.DisplayName,
		Family:          req.Family,
		Configuration:   req.Configuration,
		ComplianceRules: pq.StringArray(req.ComplianceRules),
		Active:          true,
		APIEndpoint:     req.APIEndpoint,
		APICredentials:  req.APICredentials,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}

	if req.Active != nil {
		dest.Active = *req.Active
	}

	query := `
		INSERT INTO destinations (id, name, display_name, family, configuration, compliance_rules, active, api_endpoint, api_credentials, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + destinationColumns

	err := r.ext.QueryRowxContext(
		ctx, query,
		dest.ID, dest.Name, dest.DisplayName, dest.Family, dest.Configuration,
		dest.ComplianceRules, dest.Active, dest.APIEndpoint, dest.APICredentials,
		dest.CreatedAt, dest.UpdatedAt,
	).StructScan(dest)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return nil, models.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create destination: %w", err)
	}

	return dest, nil
}

// GetDestinationByName retrieves a destination by name
func (r *Repository) GetDestinationByName(ctx context.Context, name string) (*models.Destination, error) {
	dest := &models.Destination{}
	query := `SELECT ` + destinationColumns + ` FROM destinations WHERE name = $1`

	err := sqlx.GetContext(ctx, r.ext, dest, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get destination: %w", err)
	}

	return dest, nil
}

// ListDestinations retrieves all destinations
func (r *Repository) ListDestinations(ctx context.Context, activeOnly bool) ([]models.Destination, error) {
	destinations := []models.Destination{}
	query := `SELECT ` + destinationColumns + ` FROM destinations`
	if activeOnly {
		query += " WHERE active = true"
	}
	query += " ORDER BY name ASC"

	err := sqlx.SelectContext(ctx, r.ext, &destinations, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list destinations: %w", err)
	}

	return destinations, nil
}

// UpdateDestination updates a destination by name
func (r *Repository) UpdateDestination(ctx context.Context, name string, req *models.DestinationUpdateRequest) (*models.Destination, error) {
	updates := make(map[string]any)

	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Family != nil {
		updates["family"] = *req.Family
	}
	if req.Configuration != nil {
		updates["configuration"] = req.Configuration
	}
	if req.ComplianceRules != nil {
		updates["compliance_rules"] = pq.StringArray(req.ComplianceRules)
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.APIEndpoint != nil {
		updates["api_endpoint"] = *req.APIEndpoint
	}
	if req.APICredentials != nil {
		updates["api_credentials"] = req.APICredentials
	}

	query, args, err := buildUpdateQuery("destinations", "name", name, updates, destinationColumns)
	if err != nil {
		return nil, err
	}

	dest := &models.Destination{}
	err = r.ext.QueryRowxContext(ctx, query, args...).StructScan(dest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update destination: %w", err)
	}

	return dest, nil
}

// DeleteDestination deletes a destination by name
func (r *Repository) DeleteDestination(ctx context.Context, name string) error {
	query := `DELETE FROM destinations WHERE name = $1`
	result, err := r.ext.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("failed to delete destination: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return models.ErrNotFound
	}

	return nil
}
