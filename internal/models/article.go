package models

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ArticleStatus represents the lifecycle state of an article.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusReady     ArticleStatus = "ready"
	ArticleStatusPublished ArticleStatus = "published"
	ArticleStatusFailed    ArticleStatus = "failed"
)

// Article represents a unit of editorial content being evaluated for
// syndication. It is owned by the editorial workflow; feedgate only drives
// status transitions based on publish outcomes.
type Article struct {
	ID           uuid.UUID      `db:"id"            json:"id"`
	Title        string         `db:"title"         json:"title"`
	Body         string         `db:"body"          json:"body"`
	Author       string         `db:"author"        json:"author"`
	Category     string         `db:"category"      json:"category"`
	ThumbnailURL string         `db:"thumbnail_url" json:"thumbnail_url"`
	Metadata     JSONMap        `db:"metadata"      json:"metadata"`
	Tags         pq.StringArray `db:"tags"          json:"tags"`
	Status       ArticleStatus  `db:"status"        json:"status"`
	CreatedAt    time.Time      `db:"created_at"    json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"    json:"updated_at"`
}

var htmlTagPattern = regexp.MustCompile(`<[^>]*>`)

// StripTags removes HTML markup from s.
func StripTags(s string) string {
	return htmlTagPattern.ReplaceAllString(s, "")
}

// WordCount returns the number of words in the article body, markup excluded.
// Computed at validation time, never stored.
func (a *Article) WordCount() int {
	return len(strings.Fields(StripTags(a.Body)))
}

// CharacterCount returns the number of characters in the article body,
// markup excluded.
func (a *Article) CharacterCount() int {
	return len(StripTags(a.Body))
}

// Field returns a named metadata-level field of the article. Used by the
// metadata validator to check configurable required fields.
func (a *Article) Field(name string) string {
	switch name {
	case "title":
		return a.Title
	case "body":
		return a.Body
	case "author":
		return a.Author
	case "category":
		return a.Category
	case "thumbnail_url":
		return a.ThumbnailURL
	default:
		return a.Metadata.GetString(name)
	}
}

// ArticleCreateRequest represents the request payload for creating an article.
type ArticleCreateRequest struct {
	Title        string   `binding:"required" json:"title"`
	Body         string   `binding:"required" json:"body"`
	Author       string   `json:"author"`
	Category     string   `json:"category"`
	ThumbnailURL string   `json:"thumbnail_url"`
	Metadata     JSONMap  `json:"metadata"`
	Tags         []string `json:"tags"`
}
