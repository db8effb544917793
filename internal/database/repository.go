// Package database provides PostgreSQL repositories for the feedgate entities.
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/feedgate/internal/models"
)

// Repository provides database operations for all entities. A Repository
// either wraps the shared connection pool or, inside WithTx, a single
// transaction.
type Repository struct {
	db  *sqlx.DB
	ext sqlx.ExtContext
}

// NewRepository creates a new repository instance
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db, ext: db}
}

// Ping verifies database connectivity
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// WithTx runs fn against a repository bound to a single transaction. The
// transaction commits when fn returns nil and rolls back otherwise, so every
// record mutation inside fn becomes visible together or not at all.
func (r *Repository) WithTx(ctx context.Context, fn func(*Repository) error) error {
	if r.db == nil {
		// Already inside a transaction; nested units join it.
		return fn(r)
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	txRepo := &Repository{ext: tx}
	if fnErr := fn(txRepo); fnErr != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", fnErr, rbErr)
		}
		return fnErr
	}

	if commitErr := tx.Commit(); commitErr != nil {
		return fmt.Errorf("commit transaction: %w", commitErr)
	}
	return nil
}

// buildUpdateQuery builds a dynamic UPDATE query with the given fields.
// Returns the query string and args slice, or error if no fields to update.
func buildUpdateQuery(table, keyColumn string, keyValue any, updates map[string]any, returningFields string) (string, []any, error) {
	if len(updates) == 0 {
		return "", nil, models.ErrNoFieldsToUpdate
	}

	updateFields := make([]string, 0, len(updates)+1)
	args := make([]any, 0, len(updates)+2)
	argPos := 1

	for field, value := range updates {
		updateFields = append(updateFields, fmt.Sprintf("%s = $%d", field, argPos))
		args = append(args, value)
		argPos++
	}

	updateFields = append(updateFields, fmt.Sprintf("updated_at = $%d", argPos))
	args = append(args, time.Now())
	argPos++

	args = append(args, keyValue)

	query := fmt.Sprintf(`
		UPDATE %s
		SET %s
		WHERE %s = $%d
		RETURNING %s
	`, table, strings.Join(updateFields, ", "), keyColumn, argPos, returningFields)

	return query, args, nil
}
