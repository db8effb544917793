package validator

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jonesrussell/feedgate/internal/models"
)

// validateProhibitedTopics fails when the article's category is prohibited
// or when any prohibited keyword appears as a case-insensitive substring of
// the scanned text. Title, body and tags each toggle independently. Every
// matched keyword is reported.
func validateProhibitedTopics(article *models.Article, params Params, _ *models.Destination) Result {
	prohibitedKeywords := params.Strings("prohibited_keywords")
	prohibitedCategories := params.Strings("prohibited_categories")
	checkTitle := params.Bool("check_title", true)
	checkBody := params.Bool("check_body", true)
	checkTags := params.Bool("check_tags", true)

	var issues []string

	if slices.Contains(prohibitedCategories, article.Category) {
		issues = append(issues, fmt.Sprintf("Article category %q is prohibited", article.Category))
	}

	var scanned strings.Builder
	if checkTitle {
		scanned.WriteString(" " + article.Title)
	}
	if checkBody {
		scanned.WriteString(" " + article.Body)
	}
	if checkTags && len(article.Tags) > 0 {
		scanned.WriteString(" " + strings.Join(article.Tags, " "))
	}
	text := strings.ToLower(scanned.String())

	var foundKeywords []string
	for _, keyword := range prohibitedKeywords {
		if strings.Contains(text, strings.ToLower(keyword)) {
			foundKeywords = append(foundKeywords, keyword)
		}
	}

	if len(foundKeywords) > 0 {
		issues = append(issues, "Contains prohibited keywords: "+strings.Join(foundKeywords, ", "))
	}

	if len(issues) > 0 {
		return fail("Content contains prohibited topics or keywords", map[string]any{
			"issues":                issues,
			"found_keywords":        foundKeywords,
			"category":              article.Category,
			"prohibited_categories": prohibitedCategories,
			"prohibited_keywords":   prohibitedKeywords,
		})
	}

	return pass("No prohibited topics or keywords found", nil)
}
