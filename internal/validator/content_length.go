package validator

import (
	"fmt"
	"strings"

	"github.com/jonesrussell/feedgate/internal/models"
)

// Default content length bounds, overridable per rule.
const (
	defaultMinWords = 300
	defaultMaxWords = 2000
	defaultMinChars = 1500
	defaultMaxChars = 10000
)

// validateContentLength compares the article's computed word and character
// counts against configurable bounds. Every violated bound is listed, not
// just the first.
func validateContentLength(article *models.Article, params Params, _ *models.Destination) Result {
	minWords := params.Int("min_words", defaultMinWords)
	maxWords := params.Int("max_words", defaultMaxWords)
	minChars := params.Int("min_chars", defaultMinChars)
	maxChars := params.Int("max_chars", defaultMaxChars)

	wordCount := article.WordCount()
	charCount := article.CharacterCount()

	var issues []string

	if wordCount < minWords {
		issues = append(issues, fmt.Sprintf("Word count (%d) is below minimum (%d)", wordCount, minWords))
	}
	if wordCount > maxWords {
		issues = append(issues, fmt.Sprintf("Word count (%d) exceeds maximum (%d)", wordCount, maxWords))
	}
	if charCount < minChars {
		issues = append(issues, fmt.Sprintf("Character count (%d) is below minimum (%d)", charCount, minChars))
	}
	if charCount > maxChars {
		issues = append(issues, fmt.Sprintf("Character count (%d) exceeds maximum (%d)", charCount, maxChars))
	}

	if len(issues) > 0 {
		return fail(
			"Content length validation failed: "+strings.Join(issues, ", "),
			map[string]any{
				"word_count":      wordCount,
				"character_count": charCount,
				"requirements": map[string]any{
					"min_words": minWords,
					"max_words": maxWords,
					"min_chars": minChars,
					"max_chars": maxChars,
				},
				"issues": issues,
			},
		)
	}

	return pass("Content length is within acceptable range", map[string]any{
		"word_count":      wordCount,
		"character_count": charCount,
	})
}
