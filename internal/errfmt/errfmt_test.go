package errfmt_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonesrussell/feedgate/internal/errfmt"
	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/validator"
)

func failing(rule, kind, message string, details models.JSONMap) models.CheckResult {
	return models.CheckResult{
		Rule:      rule,
		Validator: kind,
		Passed:    false,
		Message:   message,
		Details:   details,
	}
}

func TestFormatComplianceErrorsOrdering(t *testing.T) {
	results := models.ResultSet{
		failing("asset_attribution_check", validator.KindAssetAttribution, "Attribution missing", nil),
		failing("content_length_check", validator.KindContentLength, "Word count below minimum", nil),
		{Rule: "passing_rule", Validator: validator.KindMetadata, Passed: true, Message: "ok"},
		failing("prohibited_topics_check", validator.KindProhibitedTopics, "Prohibited keywords found", nil),
	}

	formatted := errfmt.FormatComplianceErrors(results)
	require.Len(t, formatted, 3)

	assert.Equal(t, "prohibited_topics_check", formatted[0].Rule)
	assert.Equal(t, errfmt.SeverityHigh, formatted[0].Severity)
	assert.Equal(t, "content_length_check", formatted[1].Rule)
	assert.Equal(t, errfmt.SeverityMedium, formatted[1].Severity)
	assert.Equal(t, "asset_attribution_check", formatted[2].Rule)
	assert.Equal(t, errfmt.SeverityLow, formatted[2].Severity)
}

func TestFormatComplianceErrorsFriendlyLanguage(t *testing.T) {
	results := models.ResultSet{
		failing("content_length_check", validator.KindContentLength,
			"Word count is 120, Character count is 800", nil),
		failing("metadata_validation", validator.KindMetadata,
			"Metadata issues: thumbnail missing", nil),
	}

	formatted := errfmt.FormatComplianceErrors(results)
	require.Len(t, formatted, 2)

	assert.Equal(t, "Article length is 120, Article length is 800", formatted[0].Message)
	assert.Equal(t, "Content Length Requirements", formatted[0].Title)
	assert.Equal(t, "required article information issues: featured image missing", formatted[1].Message)
	assert.Equal(t, "Article Information Requirements", formatted[1].Title)
}

func TestFormatComplianceErrorsUnknownKindFallback(t *testing.T) {
	results := models.ResultSet{
		failing("regional_embargo_check", "regional_embargo", "Embargoed region", nil),
	}

	formatted := errfmt.FormatComplianceErrors(results)
	require.Len(t, formatted, 1)

	assert.Equal(t, "Regional Embargo Check", formatted[0].Title)
	assert.Equal(t, errfmt.SeverityMedium, formatted[0].Severity)
	assert.Equal(t, []string{"Please review the article and make necessary corrections."},
		formatted[0].Suggestions)
}

func TestSuggestionsContentLength(t *testing.T) {
	results := models.ResultSet{
		failing("content_length_check", validator.KindContentLength, "too short", models.JSONMap{
			"issues": []any{
				"Word count 50 is below minimum 300",
				"Character count 400 is below minimum 1500",
			},
		}),
	}

	formatted := errfmt.FormatComplianceErrors(results)
	require.Len(t, formatted, 1)

	// Both issues map to the same pair of suggestions, deduplicated.
	assert.Equal(t, []string{
		"Add more detailed content to reach the minimum length requirement.",
		"Consider expanding on key points or adding relevant examples.",
	}, formatted[0].Suggestions)
}

func TestSuggestionsProhibitedTopics(t *testing.T) {
	results := models.ResultSet{
		failing("prohibited_topics_check", validator.KindProhibitedTopics, "found", models.JSONMap{
			"found_keywords": []string{"gambling", "violence"},
		}),
	}

	formatted := errfmt.FormatComplianceErrors(results)
	require.Len(t, formatted, 1)

	suggestions := formatted[0].Suggestions
	require.Len(t, suggestions, 4)
	assert.Equal(t, "Remove or rephrase content containing: gambling, violence", suggestions[0])
}

func TestSuggestionsMetadata(t *testing.T) {
	results := models.ResultSet{
		failing("metadata_validation", validator.KindMetadata, "issues", models.JSONMap{
			"issues": []any{
				"Required field author is missing",
				"Thumbnail URL is not a valid URL",
				"Title length 5 is below minimum 10",
			},
		}),
	}

	formatted := errfmt.FormatComplianceErrors(results)
	require.Len(t, formatted, 1)

	assert.Equal(t, []string{
		"Specify the article author in the author field.",
		"Add a high-quality featured image to your article.",
		"Adjust the title length to meet requirements.",
	}, formatted[0].Suggestions)
}

func TestGenerateEditorReport(t *testing.T) {
	article := &models.Article{
		ID:    uuid.New(),
		Title: "Quarterly Harbor Traffic Review",
	}
	results := models.ResultSet{
		failing("prohibited_topics_check", validator.KindProhibitedTopics, "found", nil),
		failing("metadata_validation", validator.KindMetadata, "issues", nil),
		failing("asset_attribution_check", validator.KindAssetAttribution, "missing", nil),
	}

	report := errfmt.GenerateEditorReport(article, results)

	assert.Equal(t, article.ID, report.ArticleID)
	assert.Equal(t, article.Title, report.ArticleTitle)
	assert.Equal(t, 3, report.TotalIssues)
	assert.Equal(t, 1, report.HighPriorityIssues)
	assert.Len(t, report.NextSteps, 4)
	// 15 + 10 + 5 minutes.
	assert.Equal(t, "30 minutes", report.EstimatedFixTime)
}

func TestEstimateFixTimeBuckets(t *testing.T) {
	tests := []struct {
		name    string
		results models.ResultSet
		want    string
	}{
		{
			name: "single low issue",
			results: models.ResultSet{
				failing("asset_attribution_check", validator.KindAssetAttribution, "missing", nil),
			},
			want: "Less than 15 minutes",
		},
		{
			name: "two medium issues",
			results: models.ResultSet{
				failing("content_length_check", validator.KindContentLength, "short", nil),
				failing("metadata_validation", validator.KindMetadata, "issues", nil),
			},
			want: "20 minutes",
		},
		{
			name: "many high issues round to hours",
			results: models.ResultSet{
				failing("a", validator.KindProhibitedTopics, "x", nil),
				failing("b", validator.KindProhibitedTopics, "x", nil),
				failing("c", validator.KindProhibitedTopics, "x", nil),
				failing("d", validator.KindProhibitedTopics, "x", nil),
				failing("e", validator.KindProhibitedTopics, "x", nil),
			},
			want: "1.3 hours",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			article := &models.Article{ID: uuid.New(), Title: "t"}
			report := errfmt.GenerateEditorReport(article, tt.results)
			assert.Equal(t, tt.want, report.EstimatedFixTime)
		})
	}
}
