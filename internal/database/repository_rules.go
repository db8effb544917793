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

const ruleColumns = "id, name, validator, parameters, description, active, priority, created_at, updated_at"

// CreateRule creates a new compliance rule
func (r *Repository) CreateRule(ctx context.Context, req *models.RuleCreateRequest) (*models.ComplianceRule, error) {
	rule := &models.ComplianceRule{
		ID:          uuid.New(),
		Name:        req.Name,
		Validator:   req.Validator,
		Parameters:  req.Parameters,
		Description: req.Description,
		Active:      true,
		Priority:    100,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}

	if req.Active != nil {
		rule.Active = *req.Active
	}
	if req.Priority != nil {
		rule.Priority = *req.Priority
	}

	query := `
		INSERT INTO compliance_rules (id, name, validator, parameters, description, active, priority, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + ruleColumns

	err := r.ext.QueryRowxContext(
		ctx, query,
		rule.ID, rule.Name, rule.Validator, rule.Parameters, rule.Description,
		rule.Active, rule.Priority, rule.CreatedAt, rule.UpdatedAt,
	).StructScan(rule)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" { // unique_violation
			return nil, models.ErrAlreadyExists
		}
		return nil, fmt.Errorf("failed to create rule: %w", err)
	}

	return rule, nil
}

// GetRuleByName retrieves a compliance rule by name
func (r *Repository) GetRuleByName(ctx context.Context, name string) (*models.ComplianceRule, error) {
	rule := &models.ComplianceRule{}
	query := `SELECT ` + ruleColumns + ` FROM compliance_rules WHERE name = $1`

	err := sqlx.GetContext(ctx, r.ext, rule, query, name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return rule, nil
}

// ListRules retrieves all compliance rules ordered by priority
func (r *Repository) ListRules(ctx context.Context, activeOnly bool) ([]models.ComplianceRule, error) {
	rules := []models.ComplianceRule{}
	query := `SELECT ` + ruleColumns + ` FROM compliance_rules`
	if activeOnly {
		query += " WHERE active = true"
	}
	query += " ORDER BY priority ASC, name ASC"

	err := sqlx.SelectContext(ctx, r.ext, &rules, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}

	return rules, nil
}

// ActiveRulesByNames retrieves the globally active rules among the given
// names, ordered by priority ascending. This is the active rule set for a
// destination: declared names intersected with active rule definitions.
func (r *Repository) ActiveRulesByNames(ctx context.Context, names []string) ([]models.ComplianceRule, error) {
	rules := []models.ComplianceRule{}
	if len(names) == 0 {
		return rules, nil
	}

	query := `
		SELECT ` + ruleColumns + `
		FROM compliance_rules
		WHERE name = ANY($1) AND active = true
		ORDER BY priority ASC, name ASC
	`

	err := sqlx.SelectContext(ctx, r.ext, &rules, query, pq.StringArray(names))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve active rules: %w", err)
	}

	return rules, nil
}

// UpdateRule updates a compliance rule by name
func (r *Repository) UpdateRule(ctx context.Context, name string, req *models.RuleUpdateRequest) (*models.ComplianceRule, error) {
	updates := make(map[string]any)

	if req.Validator != nil {
		updates["validator"] = *req.Validator
	}
	if req.Parameters != nil {
		updates["parameters"] = req.Parameters
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.Priority != nil {
		updates["priority"] = *req.Priority
	}

	query, args, err := buildUpdateQuery("compliance_rules", "name", name, updates, ruleColumns)
	if err != nil {
		return nil, err
	}

	rule := &models.ComplianceRule{}
	err = r.ext.QueryRowxContext(ctx, query, args...).StructScan(rule)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to update rule: %w", err)
	}

	return rule, nil
}

// DeleteRule deletes a compliance rule by name
func (r *Repository) DeleteRule(ctx context.Context, name string) error {
	query := `DELETE FROM compliance_rules WHERE name = $1`
	result, err := r.ext.ExecContext(ctx, query, name)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
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
