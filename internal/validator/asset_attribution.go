package validator

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/jonesrussell/feedgate/internal/models"
)

var (
	imgSrcPattern   = regexp.MustCompile(`(?i)<img[^>]+src=["']([^"']+)["'][^>]*>`)
	videoSrcPattern = regexp.MustCompile(`(?i)<video[^>]+src=["']([^"']+)["'][^>]*>`)
)

// validateAssetAttribution checks that the thumbnail and every embedded
// image/video in the body carries attribution metadata and, when an
// allow-list is configured, comes from an allowed host. Found media and the
// article's current attribution keys are collected into the failure details
// for diagnostics.
func validateAssetAttribution(article *models.Article, params Params, _ *models.Destination) Result {
	requireImageAttribution := params.Bool("require_image_attribution", true)
	requireVideoAttribution := params.Bool("require_video_attribution", true)
	allowedImageSources := params.Strings("allowed_image_sources")

	var issues []string
	var foundImages, foundVideos []string

	if requireImageAttribution && article.ThumbnailURL != "" && len(allowedImageSources) > 0 {
		host := urlHost(article.ThumbnailURL)
		if !slices.Contains(allowedImageSources, host) {
			issues = append(issues, fmt.Sprintf("Thumbnail source %q is not in allowed sources list", host))
		}
	}

	if requireImageAttribution {
		for index, match := range imgSrcPattern.FindAllStringSubmatch(article.Body, -1) {
			imageURL := match[1]
			foundImages = append(foundImages, imageURL)

			attributionKey := fmt.Sprintf("image_%d_attribution", index)
			if article.Metadata.GetString(attributionKey) == "" {
				issues = append(issues, fmt.Sprintf("Image at index %d requires attribution", index))
			}

			if len(allowedImageSources) > 0 {
				host := urlHost(imageURL)
				if !slices.Contains(allowedImageSources, host) {
					issues = append(issues, fmt.Sprintf("Image source %q at index %d is not allowed", host, index))
				}
			}
		}
	}

	if requireVideoAttribution {
		for index, match := range videoSrcPattern.FindAllStringSubmatch(article.Body, -1) {
			foundVideos = append(foundVideos, match[1])

			attributionKey := fmt.Sprintf("video_%d_attribution", index)
			if article.Metadata.GetString(attributionKey) == "" {
				issues = append(issues, fmt.Sprintf("Video at index %d requires attribution", index))
			}
		}
	}

	if len(issues) > 0 {
		return fail("Asset attribution validation failed", map[string]any{
			"issues":               issues,
			"found_images":         foundImages,
			"found_videos":         foundVideos,
			"current_attributions": attributionKeys(article.Metadata),
		})
	}

	return pass("All assets properly attributed", nil)
}

func urlHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}

func attributionKeys(metadata models.JSONMap) map[string]any {
	current := make(map[string]any)
	for key, value := range metadata {
		if strings.Contains(key, "_attribution") {
			current[key] = value
		}
	}
	return current
}
