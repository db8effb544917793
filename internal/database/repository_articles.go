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

const articleColumns = "id, title, body, author, category, thumbnail_url, metadata, tags, status, created_at, updated_at"

// CreateArticle creates a new article in draft status
func (r *Repository) CreateArticle(ctx context.Context, req *models.ArticleCreateRequest) (*models.Article, error) {
	article := &models.Article{
		ID:           uuid.New(),
		Title:        req.Title,
		Body:         req.Body,
		Author:       req.Author,
		Category:     req.Category,
		ThumbnailURL: req.ThumbnailURL,
		Metadata:     req.Metadata,
		Tags:         pq.StringArray(req.Tags),
		Status:       models.ArticleStatusDraft,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	query := `
		INSERT INTO articles (id, title, body, author, category, thumbnail_url, metadata, tags, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING ` + articleColumns

	err := r.ext.QueryRowxContext(
		ctx, query,
		article.ID, article.Title, article.Body, article.Author, article.Category,
		article.ThumbnailURL, article.Metadata, article.Tags, article.Status,
		article.CreatedAt, article.UpdatedAt,
	).StructScan(article)

	if err != nil {
		return nil, fmt.Errorf("failed to create article: %w", err)
	}

	return article, nil
}

// GetArticleByID retrieves an article by ID
func (r *Repository) GetArticleByID(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	article := &models.Article{}
	query := `SELECT ` + articleColumns + ` FROM articles WHERE id = $1`

	err := sqlx.GetContext(ctx, r.ext, article, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get article: %w", err)
	}

	return article, nil
}

// ListArticles retrieves articles, optionally filtered by status
func (r *Repository) ListArticles(ctx context.Context, status models.ArticleStatus, limit int) ([]models.Article, error) {
	articles := []models.Article{}
	const defaultLimit = 100
	if limit <= 0 {
		limit = defaultLimit
	}

	query := `SELECT ` + articleColumns + ` FROM articles`
	args := []any{}
	if status != "" {
		query += " WHERE status = $1"
		args = append(args, status)
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args)+1)
	args = append(args, limit)

	err := sqlx.SelectContext(ctx, r.ext, &articles, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return articles, nil
}

// UpdateArticleStatus transitions an article's lifecycle status
func (r *Repository) UpdateArticleStatus(ctx context.Context, id uuid.UUID, status models.ArticleStatus) error {
	query := `UPDATE articles SET status = $1, updated_at = $2 WHERE id = $3`

	result, err := r.ext.ExecContext(ctx, query, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update article status: %w", err)
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
