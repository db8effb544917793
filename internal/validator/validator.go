// Package validator implements the compliance validators that rules bind to.
//
// Each validator is a pure function of the article, the rule parameters and
// the destination configuration: no mutation, no I/O, deterministic output.
// Expected violations are reported through the Result, never through an
// error; the only configuration-time failure is an unknown validator kind.
package validator

import (
	"fmt"
	"slices"

	"github.com/jonesrussell/feedgate/internal/models"
)

// Validator kinds. The set is closed: rules reference validators by one of
// these identifiers, checked at configuration-load time rather than
// mid-pipeline.
const (
	KindContentLength    = "content_length"
	KindProhibitedTopics = "prohibited_topics"
	KindMetadata         = "metadata"
	KindAssetAttribution = "asset_attribution"
)

// Result is the outcome of one validator invocation.
type Result struct {
	Passed  bool
	Message string
	Details map[string]any
}

// Func validates one article against one rule's parameters.
type Func func(article *models.Article, params Params, dest *models.Destination) Result

var registry = map[string]Func{
	KindContentLength:    validateContentLength,
	KindProhibitedTopics: validateProhibitedTopics,
	KindMetadata:         validateMetadata,
	KindAssetAttribution: validateAssetAttribution,
}

// Lookup returns the validator registered under kind.
func Lookup(kind string) (Func, bool) {
	fn, ok := registry[kind]
	return fn, ok
}

// CheckKind returns models.ErrUnknownValidator when kind is not registered.
// Called when rules are created or updated so a bad identifier is caught
// eagerly instead of failing a later validation run.
func CheckKind(kind string) error {
	if _, ok := registry[kind]; !ok {
		return fmt.Errorf("%w: %q", models.ErrUnknownValidator, kind)
	}
	return nil
}

// Kinds returns the registered validator kinds, sorted.
func Kinds() []string {
	kinds := make([]string, 0, len(registry))
	for kind := range registry {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

func pass(message string, details map[string]any) Result {
	return Result{Passed: true, Message: message, Details: details}
}

func fail(message string, details map[string]any) Result {
	return Result{Passed: false, Message: message, Details: details}
}
