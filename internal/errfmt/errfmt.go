// Package errfmt turns raw compliance results into editor-facing language:
// friendly titles, rewritten messages, concrete suggestions, and a
// prioritized report with a fix-time estimate.
package errfmt

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/validator"
)

// Severity levels, highest first.
const (
	SeverityHigh   = "high"
	SeverityMedium = "medium"
	SeverityLow    = "low"
)

// FormattedError is one failed check rendered for a human editor.
type FormattedError struct {
	Rule        string   `json:"rule"`
	Title       string   `json:"title"`
	Message     string   `json:"message"`
	Suggestions []string `json:"suggestions"`
	Severity    string   `json:"severity"`
}

// EditorReport summarizes everything an editor needs to get an article
// through compliance.
type EditorReport struct {
	ArticleID          uuid.UUID        `json:"article_id"`
	ArticleTitle       string           `json:"article_title"`
	TotalIssues        int              `json:"total_issues"`
	HighPriorityIssues int              `json:"high_priority_issues"`
	Issues             []FormattedError `json:"issues"`
	NextSteps          []string         `json:"next_steps"`
	EstimatedFixTime   string           `json:"estimated_fix_time"`
}

var displayNames = map[string]string{
	validator.KindContentLength:    "Content Length Requirements",
	validator.KindProhibitedTopics: "Content Policy Compliance",
	validator.KindMetadata:         "Article Information Requirements",
	validator.KindAssetAttribution: "Media Attribution Requirements",
}

var severities = map[string]string{
	validator.KindProhibitedTopics: SeverityHigh,
	validator.KindMetadata:         SeverityMedium,
	validator.KindContentLength:    SeverityMedium,
	validator.KindAssetAttribution: SeverityLow,
}

// Technical phrases replaced with editor-facing language, checked
// case-insensitively in order.
var friendlyReplacements = []struct {
	technical string
	friendly  string
}{
	{"word count", "Article length"},
	{"character count", "Article length"},
	{"prohibited keywords", "content that violates our guidelines"},
	{"metadata", "required article information"},
	{"thumbnail", "featured image"},
	{"attribution", "image credits"},
}

var severityRank = map[string]int{
	SeverityHigh:   0,
	SeverityMedium: 1,
	SeverityLow:    2,
}

// FormatComplianceErrors renders the failing results of a compliance run,
// ordered by severity then rule name.
func FormatComplianceErrors(results models.ResultSet) []FormattedError {
	formatted := make([]FormattedError, 0)

	for _, result := range results {
		if result.Passed {
			continue
		}
		formatted = append(formatted, FormattedError{
			Rule:        result.Rule,
			Title:       displayName(result),
			Message:     makeUserFriendly(result.Message),
			Suggestions: suggestions(result),
			Severity:    severity(result),
		})
	}

	sort.SliceStable(formatted, func(i, j int) bool {
		if severityRank[formatted[i].Severity] != severityRank[formatted[j].Severity] {
			return severityRank[formatted[i].Severity] < severityRank[formatted[j].Severity]
		}
		return formatted[i].Rule < formatted[j].Rule
	})

	return formatted
}

// GenerateEditorReport builds the full remediation report for an article
// that failed compliance.
func GenerateEditorReport(article *models.Article, results models.ResultSet) *EditorReport {
	issues := FormatComplianceErrors(results)

	highPriority := 0
	for _, issue := range issues {
		if issue.Severity == SeverityHigh {
			highPriority++
		}
	}

	return &EditorReport{
		ArticleID:          article.ID,
		ArticleTitle:       article.Title,
		TotalIssues:        len(issues),
		HighPriorityIssues: highPriority,
		Issues:             issues,
		NextSteps: []string{
			"Review and address each issue listed above",
			"Make the suggested corrections to your article",
			"Test compliance again before attempting to publish",
			"Contact the editorial team if you need assistance",
		},
		EstimatedFixTime: estimateFixTime(issues),
	}
}

func displayName(result models.CheckResult) string {
	if name, ok := displayNames[result.Validator]; ok {
		return name
	}
	// Unknown kinds fall back to a title-cased rule name.
	words := strings.Split(result.Rule, "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func severity(result models.CheckResult) string {
	if s, ok := severities[result.Validator]; ok {
		return s
	}
	return SeverityMedium
}

func makeUserFriendly(message string) string {
	for _, r := range friendlyReplacements {
		message = replaceInsensitive(message, r.technical, r.friendly)
	}
	return message
}

// replaceInsensitive replaces every case-insensitive occurrence of old
// with new.
func replaceInsensitive(s, old, new string) string {
	if old == "" {
		return s
	}
	var b strings.Builder
	lower := strings.ToLower(s)
	lowerOld := strings.ToLower(old)
	for {
		i := strings.Index(lower, lowerOld)
		if i < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:i])
		b.WriteString(new)
		s = s[i+len(old):]
		lower = lower[i+len(lowerOld):]
	}
}

func suggestions(result models.CheckResult) []string {
	switch result.Validator {
	case validator.KindContentLength:
		return contentLengthSuggestions(result.Details)
	case validator.KindProhibitedTopics:
		return prohibitedTopicsSuggestions(result.Details)
	case validator.KindMetadata:
		return metadataSuggestions(result.Details)
	case validator.KindAssetAttribution:
		return []string{
			"Add proper attribution for all images and media used in the article.",
			"Ensure you have permission to use all visual content.",
			"Include photo credits in the article metadata.",
			"Use only images from approved sources when possible.",
		}
	default:
		return []string{"Please review the article and make necessary corrections."}
	}
}

func contentLengthSuggestions(details models.JSONMap) []string {
	var out []string
	for _, issue := range detailStrings(details, "issues") {
		issue = strings.ToLower(issue)
		switch {
		case strings.Contains(issue, "below minimum"):
			out = appendUnique(out,
				"Add more detailed content to reach the minimum length requirement.",
				"Consider expanding on key points or adding relevant examples.")
		case strings.Contains(issue, "exceeds maximum"):
			out = appendUnique(out,
				"Shorten the article by removing less essential information.",
				"Consider splitting into multiple articles if appropriate.")
		}
	}
	return out
}

func prohibitedTopicsSuggestions(details models.JSONMap) []string {
	var out []string
	if keywords := detailStrings(details, "found_keywords"); len(keywords) > 0 {
		out = append(out,
			fmt.Sprintf("Remove or rephrase content containing: %s", strings.Join(keywords, ", ")),
			"Use alternative terminology that conveys the same meaning.")
	}
	out = append(out,
		"Ensure content complies with feed community guidelines.",
		"Focus on informative, appropriate content for the target audience.")
	return out
}

func metadataSuggestions(details models.JSONMap) []string {
	var out []string
	for _, issue := range detailStrings(details, "issues") {
		issue = strings.ToLower(issue)
		switch {
		case strings.Contains(issue, "title") && strings.Contains(issue, "missing"):
			out = appendUnique(out, "Add a descriptive title to your article.")
		case strings.Contains(issue, "title"):
			out = appendUnique(out, "Adjust the title length to meet requirements.")
		case strings.Contains(issue, "author"):
			out = appendUnique(out, "Specify the article author in the author field.")
		case strings.Contains(issue, "category"):
			out = appendUnique(out, "Select an appropriate category for your article.")
		case strings.Contains(issue, "thumbnail"):
			out = appendUnique(out, "Add a high-quality featured image to your article.")
		}
	}
	return out
}

// detailStrings extracts a string slice from a details entry, tolerating
// the []any shape JSON decoding produces.
func detailStrings(details models.JSONMap, key string) []string {
	if details == nil {
		return nil
	}
	switch v := details[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func appendUnique(out []string, values ...string) []string {
	for _, v := range values {
		seen := false
		for _, existing := range out {
			if existing == v {
				seen = true
				break
			}
		}
		if !seen {
			out = append(out, v)
		}
	}
	return out
}

// estimateFixTime weights issues by severity: 15 minutes for high, 10 for
// medium, 5 for low.
func estimateFixTime(issues []FormattedError) string {
	minutes := 0
	for _, issue := range issues {
		switch issue.Severity {
		case SeverityHigh:
			minutes += 15
		case SeverityMedium:
			minutes += 10
		case SeverityLow:
			minutes += 5
		}
	}

	switch {
	case minutes < 15:
		return "Less than 15 minutes"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", minutes)
	default:
		hours := math.Round(float64(minutes)/60*10) / 10
		return fmt.Sprintf("%g hours", hours)
	}
}
