package models_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jonesrussell/feedgate/internal/models"
)

func TestWordCountStripsMarkup(t *testing.T) {
	article := &models.Article{
		Body: `<p>Three <strong>little</strong> words</p>`,
	}

	assert.Equal(t, 3, article.WordCount())
	assert.Equal(t, len("Three little words"), article.CharacterCount())
}

func TestArticleField(t *testing.T) {
	article := &models.Article{
		Title:        "Title",
		Body:         "Body",
		Author:       "Author",
		Category:     "Category",
		ThumbnailURL: "https://example.com/t.jpg",
		Metadata:     models.JSONMap{"license": "CC-BY"},
	}

	testCases := []struct {
		field string
		want  string
	}{
		{"title", "Title"},
		{"author", "Author"},
		{"category", "Category"},
		{"thumbnail_url", "https://example.com/t.jpg"},
		{"license", "CC-BY"},
		{"unknown", ""},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.want, article.Field(tc.field), "field %q", tc.field)
	}
}

func TestValidFamily(t *testing.T) {
	assert.True(t, models.ValidFamily(models.FamilyMSN))
	assert.True(t, models.ValidFamily(models.FamilyGoogleNews))
	assert.True(t, models.ValidFamily(models.FamilyAppleNews))
	assert.False(t, models.ValidFamily("myspace"))
	assert.False(t, models.ValidFamily(""))
}
