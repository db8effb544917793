package validator

import (
	"fmt"
	"net/url"

	"github.com/jonesrussell/feedgate/internal/models"
)

// Default title length bounds, overridable per rule.
const (
	defaultTitleMinLength = 10
	defaultTitleMaxLength = 100
)

func defaultRequiredFields() []string {
	return []string{"title", "author", "category"}
}

// IsWellFormedURL reports whether s parses as an absolute URL with a host.
func IsWellFormedURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && u.Host != ""
}

// validateMetadata checks required fields, title length bounds and the
// thumbnail reference.
func validateMetadata(article *models.Article, params Params, _ *models.Destination) Result {
	requiredFields := params.Strings("required_fields")
	if requiredFields == nil {
		requiredFields = defaultRequiredFields()
	}
	titleMaxLength := params.Int("title_max_length", defaultTitleMaxLength)
	titleMinLength := params.Int("title_min_length", defaultTitleMinLength)
	requireThumbnail := params.Bool("require_thumbnail", true)

	var issues []string

	for _, field := range requiredFields {
		if article.Field(field) == "" {
			issues = append(issues, fmt.Sprintf("Required field %q is missing or empty", field))
		}
	}

	if article.Title != "" {
		titleLength := len(article.Title)
		if titleLength < titleMinLength {
			issues = append(issues, fmt.Sprintf("Title length (%d) is below minimum (%d)", titleLength, titleMinLength))
		}
		if titleLength > titleMaxLength {
			issues = append(issues, fmt.Sprintf("Title length (%d) exceeds maximum (%d)", titleLength, titleMaxLength))
		}
	}

	if requireThumbnail && article.ThumbnailURL == "" {
		issues = append(issues, "Thumbnail URL is required but not provided")
	}

	if article.ThumbnailURL != "" && !IsWellFormedURL(article.ThumbnailURL) {
		issues = append(issues, "Invalid thumbnail URL format")
	}

	if len(issues) > 0 {
		return fail("Metadata validation failed", map[string]any{
			"issues": issues,
			"current_metadata": map[string]any{
				"title":         article.Title,
				"title_length":  len(article.Title),
				"author":        article.Author,
				"category":      article.Category,
				"thumbnail_url": article.ThumbnailURL,
			},
			"requirements": map[string]any(params),
		})
	}

	return pass("All metadata requirements satisfied", nil)
}
