package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/jonesrussell/feedgate/internal/models"
)

const auditColumns = "id, event_type, article_id, destination_name, context, created_at"

// AppendAuditEvent appends an entry to the audit trail. Entries are
// append-only; nothing in this service updates or deletes them.
func (r *Repository) AppendAuditEvent(ctx context.Context, eventType string, articleID *uuid.UUID, destinationName string, eventContext models.JSONMap) (*models.AuditLog, error) {
	entry := &models.AuditLog{
		ID:        uuid.New(),
		EventType: eventType,
		ArticleID: articleID,
		Context:   eventContext,
		CreatedAt: time.Now(),
	}
	if destinationName != "" {
		entry.DestinationName = &destinationName
	}

	query := `
		INSERT INTO audit_logs (id, event_type, article_id, destination_name, context, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + auditColumns

	err := r.ext.QueryRowxContext(
		ctx, query,
		entry.ID, entry.EventType, entry.ArticleID, entry.DestinationName,
		entry.Context, entry.CreatedAt,
	).StructScan(entry)

	if err != nil {
		return nil, fmt.Errorf("failed to append audit event: %w", err)
	}

	return entry, nil
}

// ListAuditEventsByType retrieves audit entries of one event type created at
// or after the given time, newest first.
func (r *Repository) ListAuditEventsByType(ctx context.Context, eventType string, since time.Time, limit int) ([]models.AuditLog, error) {
	entries := []models.AuditLog{}
	const defaultLimit = 500
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE event_type = $1 AND created_at >= $2
		ORDER BY created_at DESC
		LIMIT $3
	`

	err := sqlx.SelectContext(ctx, r.ext, &entries, query, eventType, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	return entries, nil
}

// ListAuditEventsForArticle retrieves the audit trail for one article,
// newest first.
func (r *Repository) ListAuditEventsForArticle(ctx context.Context, articleID uuid.UUID, limit int) ([]models.AuditLog, error) {
	entries := []models.AuditLog{}
	const defaultLimit = 100
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `
		SELECT ` + auditColumns + `
		FROM audit_logs
		WHERE article_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	err := sqlx.SelectContext(ctx, r.ext, &entries, query, articleID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list audit events: %w", err)
	}

	return entries, nil
}
