package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/feedgate/internal/models"
)

const attemptColumns = "id, article_id, destination_name, status, compliance_results, error_details, attempted_at, completed_at, external_id"

// CreatePendingAttempt creates a new publish attempt in pending status with
// an empty compliance result set.
func (r *Repository) CreatePendingAttempt(ctx context.Context, articleID uuid.UUID, destinationName string) (*models.PublishAttempt, error) {
	attempt := &models.PublishAttempt{
		ID:                uuid.New(),
		ArticleID:         articleID,
		DestinationName:   destinationName,
		Status:            models.AttemptStatusPending,
		ComplianceResults: models.ResultSet{},
		AttemptedAt:       time.Now(),
	}

	query := `
		INSERT INTO publish_attempts (id, article_id, destination_name, status, compliance_results, attempted_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + attemptColumns

	err := r.ext.QueryRowxContext(
		ctx, query,
		attempt.ID, attempt.ArticleID, attempt.DestinationName, attempt.Status,
		attempt.ComplianceResults, attempt.AttemptedAt,
	).StructScan(attempt)

	if err != nil {
		return nil, fmt.Errorf("failed to create publish attempt: %w", err)
	}

	return attempt, nil
}

// SetAttemptComplianceResults persists the compliance result set onto a
// pending attempt. Called as soon as the engine finishes so partial
// diagnostics are never lost, even when the attempt later fails.
func (r *Repository) SetAttemptComplianceResults(ctx context.Context, id uuid.UUID, results models.ResultSet) error {
	query := `UPDATE publish_attempts SET compliance_results = $1 WHERE id = $2`

	result, err := r.ext.ExecContext(ctx, query, results, id)
	if err != nil {
		return fmt.Errorf("failed to set compliance results: %w", err)
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

// FinalizeAttemptSuccess transitions a pending attempt to success with the
// external identifier returned by the destination.
func (r *Repository) FinalizeAttemptSuccess(ctx context.Context, id uuid.UUID, externalID string) error {
	query := `
		UPDATE publish_attempts
		SET status = $1, completed_at = $2, external_id = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.ext.ExecContext(ctx, query,
		models.AttemptStatusSuccess, time.Now(), externalID, id, models.AttemptStatusPending)
	if err != nil {
		return fmt.Errorf("failed to finalize attempt: %w", err)
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

// FinalizeAttemptFailure transitions a pending attempt to failed with
// structured error detail.
func (r *Repository) FinalizeAttemptFailure(ctx context.Context, id uuid.UUID, details *models.ErrorDetails) error {
	query := `
		UPDATE publish_attempts
		SET status = $1, completed_at = $2, error_details = $3
		WHERE id = $4 AND status = $5
	`

	result, err := r.ext.ExecContext(ctx, query,
		models.AttemptStatusFailed, time.Now(), details, id, models.AttemptStatusPending)
	if err != nil {
		return fmt.Errorf("failed to finalize attempt: %w", err)
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

// GetAttemptByID retrieves a publish attempt by ID
func (r *Repository) GetAttemptByID(ctx context.Context, id uuid.UUID) (*models.PublishAttempt, error) {
	attempt := &models.PublishAttempt{}
	query := `SELECT ` + attemptColumns + ` FROM publish_attempts WHERE id = $1`

	err := sqlx.GetContext(ctx, r.ext, attempt, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get publish attempt: %w", err)
	}

	return attempt, nil
}

// ListAttempts retrieves publish attempts with optional filters
func (r *Repository) ListAttempts(ctx context.Context, filter *models.AttemptFilter) ([]models.PublishAttempt, error) {
	attempts := []models.PublishAttempt{}

	if filter.Limit == 0 {
		filter.Limit = 100
	}
	const maxLimit = 1000
	if filter.Limit > maxLimit {
		filter.Limit = maxLimit
	}

	query := `SELECT ` + attemptColumns + ` FROM publish_attempts WHERE 1=1`
	args := []any{}
	argPos := 1

	if filter.DestinationName != "" {
		query += fmt.Sprintf(" AND destination_name = $%d", argPos)
		args = append(args, filter.DestinationName)
		argPos++
	}
	if filter.ArticleID != "" {
		query += fmt.Sprintf(" AND article_id = $%d", argPos)
		args = append(args, filter.ArticleID)
		argPos++
	}
	if filter.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argPos)
		args = append(args, filter.Status)
		argPos++
	}
	if filter.Since != nil {
		query += fmt.Sprintf(" AND attempted_at >= $%d", argPos)
		args = append(args, *filter.Since)
		argPos++
	}
	if filter.Until != nil {
		query += fmt.Sprintf(" AND attempted_at <= $%d", argPos)
		args = append(args, *filter.Until)
		argPos++
	}

	query += fmt.Sprintf(" ORDER BY attempted_at DESC LIMIT $%d OFFSET $%d", argPos, argPos+1)
	args = append(args, filter.Limit, filter.Offset)

	err := sqlx.SelectContext(ctx, r.ext, &attempts, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list publish attempts: %w", err)
	}

	return attempts, nil
}

// CountAttempts counts attempts for a destination since the given time,
// optionally restricted to one status. Pass an empty status to count all.
func (r *Repository) CountAttempts(ctx context.Context, destinationName string, status models.AttemptStatus, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM publish_attempts WHERE destination_name = $1 AND attempted_at >= $2`
	args := []any{destinationName, since}

	if status != "" {
		query += " AND status = $3"
		args = append(args, status)
	}

	var count int
	err := sqlx.GetContext(ctx, r.ext, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to count publish attempts: %w", err)
	}

	return count, nil
}
