package protocol

import (
	"strings"
	"time"

	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/validator"
)

// Payload shape constraints per destination family.
const (
	msnTitleMaxLength    = 100
	msnContentMinLength  = 300
	googleHeadlineMaxLen = 120
	googleBodyMinLength  = 200
	appleTitleMaxLength  = 80
	appleBodyMinLength   = 250
	appleExcerptLength   = 200
)

// msnProhibitedTerms are scanned case-insensitively across title and content.
var msnProhibitedTerms = []string{"violence", "explicit", "hate"}

// MSNPayload is the wire shape for the MSN family.
type MSNPayload struct {
	Title         string         `json:"title"`
	Content       string         `json:"content"`
	Author        string         `json:"author"`
	Category      string         `json:"category"`
	Thumbnail     string         `json:"thumbnail,omitempty"`
	Metadata      models.JSONMap `json:"metadata,omitempty"`
	PublishedDate time.Time      `json:"published_date"`
}

// BuildMSNPayload shapes an article for the MSN family.
func BuildMSNPayload(article *models.Article) *MSNPayload {
	return &MSNPayload{
		Title:         article.Title,
		Content:       article.Body,
		Author:        article.Author,
		Category:      article.Category,
		Thumbnail:     article.ThumbnailURL,
		Metadata:      article.Metadata,
		PublishedDate: time.Now(),
	}
}

// Validate enforces the MSN family's payload shape.
func (p *MSNPayload) Validate() error {
	if p.Title == "" || len(p.Title) > msnTitleMaxLength {
		return rejection(models.FamilyMSN, "title must be present and under %d characters", msnTitleMaxLength)
	}
	if len(p.Content) < msnContentMinLength {
		return rejection(models.FamilyMSN, "content must be at least %d characters", msnContentMinLength)
	}
	if p.Author == "" {
		return rejection(models.FamilyMSN, "author is required")
	}
	if p.Category == "" {
		return rejection(models.FamilyMSN, "category is required")
	}

	scanned := strings.ToLower(p.Title + " " + p.Content)
	for _, term := range msnProhibitedTerms {
		if strings.Contains(scanned, term) {
			return rejection(models.FamilyMSN, "content contains prohibited term: %s", term)
		}
	}

	return nil
}

// GoogleNewsPayload is the wire shape for the Google News family.
type GoogleNewsPayload struct {
	Headline        string    `json:"headline"`
	Body            string    `json:"body"`
	Author          string    `json:"author,omitempty"`
	Section         string    `json:"section,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	PublicationDate time.Time `json:"publication_date"`
}

// BuildGoogleNewsPayload shapes an article for the Google News family.
func BuildGoogleNewsPayload(article *models.Article) *GoogleNewsPayload {
	return &GoogleNewsPayload{
		Headline:        article.Title,
		Body:            article.Body,
		Author:          article.Author,
		Section:         article.Category,
		ImageURL:        article.ThumbnailURL,
		PublicationDate: time.Now(),
	}
}

// Validate enforces the Google News family's payload shape.
func (p *GoogleNewsPayload) Validate() error {
	if p.Headline == "" || len(p.Headline) > googleHeadlineMaxLen {
		return rejection(models.FamilyGoogleNews, "headline must be present and under %d characters", googleHeadlineMaxLen)
	}
	if len(p.Body) < googleBodyMinLength {
		return rejection(models.FamilyGoogleNews, "body must be at least %d characters", googleBodyMinLength)
	}
	if p.ImageURL != "" && !validator.IsWellFormedURL(p.ImageURL) {
		return rejection(models.FamilyGoogleNews, "invalid image URL format")
	}
	return nil
}

// AppleNewsComponent is one content component of an Apple News payload.
type AppleNewsComponent struct {
	Role string `json:"role"`
	Text string `json:"text,omitempty"`
	URL  string `json:"URL,omitempty"`
}

// AppleNewsPayload is the wire shape for the Apple News family.
type AppleNewsPayload struct {
	Title      string               `json:"title"`
	Components []AppleNewsComponent `json:"components"`
	Metadata   struct {
		Author        string    `json:"author"`
		DatePublished time.Time `json:"datePublished"`
		Excerpt       string    `json:"excerpt"`
	} `json:"metadata"`
}

// BuildAppleNewsPayload shapes an article for the Apple News family. The
// body is stripped of markup into a body component; a present thumbnail
// becomes a photo component.
func BuildAppleNewsPayload(article *models.Article) *AppleNewsPayload {
	text := models.StripTags(article.Body)

	excerpt := text
	if len(excerpt) > appleExcerptLength {
		excerpt = excerpt[:appleExcerptLength] + "..."
	}

	payload := &AppleNewsPayload{
		Title: article.Title,
		Components: []AppleNewsComponent{
			{Role: "body", Text: text},
		},
	}
	payload.Metadata.Author = article.Author
	payload.Metadata.DatePublished = time.Now()
	payload.Metadata.Excerpt = excerpt

	if article.ThumbnailURL != "" {
		payload.Components = append(payload.Components, AppleNewsComponent{
			Role: "photo",
			URL:  article.ThumbnailURL,
		})
	}

	return payload
}

// Validate enforces the Apple News family's payload shape.
func (p *AppleNewsPayload) Validate() error {
	if p.Title == "" || len(p.Title) > appleTitleMaxLength {
		return rejection(models.FamilyAppleNews, "title must be present and under %d characters", appleTitleMaxLength)
	}
	if len(p.Components) == 0 {
		return rejection(models.FamilyAppleNews, "article must have components")
	}

	for _, component := range p.Components {
		if component.Role != "body" {
			continue
		}
		if len(component.Text) < appleBodyMinLength {
			return rejection(models.FamilyAppleNews, "body component must have at least %d characters", appleBodyMinLength)
		}
		return nil
	}

	return rejection(models.FamilyAppleNews, "article must have a body component")
}
