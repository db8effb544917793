// Package compliance executes a destination's active rule set against an
// article and aggregates the per-rule outcomes.
package compliance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/validator"
)

// Store is the slice of the repository the engine needs: rule resolution and
// the audit trail. Passing the transaction-bound repository keeps engine
// writes inside the caller's atomic unit.
type Store interface {
	ActiveRulesByNames(ctx context.Context, names []string) ([]models.ComplianceRule, error)
	AppendAuditEvent(ctx context.Context, eventType string, articleID *uuid.UUID, destinationName string, eventContext models.JSONMap) (*models.AuditLog, error)
}

// Engine runs compliance validation for one article against one destination.
type Engine struct {
	store  Store
	logger logger.Logger
}

// NewEngine creates a new compliance engine
func NewEngine(store Store, log logger.Logger) *Engine {
	return &Engine{
		store:  store,
		logger: log,
	}
}

// ValidateArticle resolves the destination's active rule set (declared rule
// names intersected with globally active rules, priority ascending) and
// executes each validator in order. A rule whose validator is unknown or
// panics produces a synthetic failing result; it never aborts the run. The
// full result set is returned regardless of outcome — callers derive the
// aggregate through ResultSet.AllPassed.
func (e *Engine) ValidateArticle(ctx context.Context, article *models.Article, dest *models.Destination) (models.ResultSet, error) {
	rules, err := e.store.ActiveRulesByNames(ctx, dest.ComplianceRules)
	if err != nil {
		return nil, fmt.Errorf("resolve active rules: %w", err)
	}

	ruleNames := make([]string, 0, len(rules))
	for _, rule := range rules {
		ruleNames = append(ruleNames, rule.Name)
	}

	if _, auditErr := e.store.AppendAuditEvent(ctx, models.EventComplianceCheckStarted, &article.ID, dest.Name, models.JSONMap{
		"rules_count": len(rules),
		"rule_names":  ruleNames,
	}); auditErr != nil {
		return nil, auditErr
	}

	results := make(models.ResultSet, 0, len(rules))
	for _, rule := range rules {
		result := e.execute(&rule, article, dest)

		results = append(results, models.CheckResult{
			Rule:       rule.Name,
			Validator:  rule.Validator,
			Passed:     result.Passed,
			Message:    result.Message,
			Details:    result.Details,
			ExecutedAt: time.Now(),
		})

		e.logger.Debug("compliance check executed",
			logger.String("article_id", article.ID.String()),
			logger.String("destination", dest.Name),
			logger.String("rule", rule.Name),
			logger.Bool("passed", result.Passed))
	}

	passedCount := 0
	for _, r := range results {
		if r.Passed {
			passedCount++
		}
	}

	if _, auditErr := e.store.AppendAuditEvent(ctx, models.EventComplianceCheckCompleted, &article.ID, dest.Name, models.JSONMap{
		"total_rules":  len(results),
		"passed_rules": passedCount,
		"failed_rules": len(results) - passedCount,
		"rule_names":   ruleNames,
		"results":      results,
	}); auditErr != nil {
		return nil, auditErr
	}

	return results, nil
}

// execute runs one rule's validator, converting an unknown kind or a panic
// into a failing result so the remaining rules still run.
func (e *Engine) execute(rule *models.ComplianceRule, article *models.Article, dest *models.Destination) (result validator.Result) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("compliance check panicked",
				logger.String("rule", rule.Name),
				logger.String("article_id", article.ID.String()),
				logger.Any("panic", r))
			result = validator.Result{
				Passed:  false,
				Message: fmt.Sprintf("Validation error: %v", r),
				Details: map[string]any{"panic": fmt.Sprint(r)},
			}
		}
	}()

	fn, ok := validator.Lookup(rule.Validator)
	if !ok {
		return validator.Result{
			Passed:  false,
			Message: fmt.Sprintf("Validation error: unknown validator kind %q", rule.Validator),
			Details: map[string]any{"validator": rule.Validator},
		}
	}

	return fn(article, validator.Params(rule.Parameters), dest)
}
