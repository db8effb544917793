// Package publisher drives the publish-attempt state machine: pending to
// success or failed, finalized exactly once.
package publisher

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonesrussell/feedgate/internal/compliance"
	"github.com/jonesrussell/feedgate/internal/database"
	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/metrics"
	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/protocol"
	"github.com/jonesrussell/feedgate/internal/registry"
)

// Deliverer performs the destination-specific payload validation and
// delivery call. Satisfied by *protocol.Gateway.
type Deliverer interface {
	Deliver(ctx context.Context, article *models.Article, dest *models.Destination) (string, error)
}

// Service orchestrates publish attempts.
type Service struct {
	repo     *database.Repository
	registry *registry.Registry
	gateway  Deliverer
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewService creates a new publish orchestrator
func NewService(repo *database.Repository, reg *registry.Registry, gateway Deliverer, m *metrics.Metrics, log logger.Logger) *Service {
	return &Service{
		repo:     repo,
		registry: reg,
		gateway:  gateway,
		metrics:  m,
		logger:   log,
	}
}

// Outcome is one destination's result in a multi-destination publish.
type Outcome struct {
	Attempt      *models.PublishAttempt        `json:"attempt,omitempty"`
	Error        string                        `json:"error,omitempty"`
	FailedChecks map[string]models.CheckResult `json:"failed_checks,omitempty"`
}

// MultiResult maps destination name to its publish outcome.
type MultiResult map[string]Outcome

// AnySucceeded reports whether at least one destination accepted the
// article, which is the caller-visible success criterion for fan-out.
func (m MultiResult) AnySucceeded() bool {
	for _, outcome := range m {
		if outcome.Error == "" {
			return true
		}
	}
	return false
}

// Publish runs one publish attempt for the article against the named
// destination. All record mutations happen inside a single transaction, so a
// reader never observes a pending attempt with half-written compliance
// results.
//
// The returned attempt is always the finalized record when one was created.
// The returned error classifies the failure: *ComplianceError (rules failed
// or destination unavailable is *ConfigError), *ProtocolError (payload
// rejected or delivery failed), or a wrapped infrastructure error.
func (s *Service) Publish(ctx context.Context, article *models.Article, destinationName string) (*models.PublishAttempt, error) {
	var attempt *models.PublishAttempt
	var outcome error

	txErr := s.repo.WithTx(ctx, func(tx *database.Repository) error {
		var err error
		attempt, outcome, err = s.publishInTx(ctx, tx, article, destinationName)
		return err
	})
	if txErr != nil {
		return nil, fmt.Errorf("publish %s to %s: %w", article.ID, destinationName, txErr)
	}

	if attempt != nil {
		outcomeLabel := metrics.OutcomeSuccess
		if attempt.Status == models.AttemptStatusFailed {
			outcomeLabel = metrics.OutcomeFailed
		}
		s.metrics.RecordAttempt(destinationName, outcomeLabel)
	}

	return attempt, outcome
}

// publishInTx performs steps 1-7 of the attempt state machine against the
// transaction-bound repository. The returned error aborts and rolls back
// the transaction; a domain failure (compliance, config, protocol) is
// returned as outcome instead so the finalized attempt still commits.
func (s *Service) publishInTx(ctx context.Context, tx *database.Repository, article *models.Article, destinationName string) (*models.PublishAttempt, error, error) {
	attempt, err := tx.CreatePendingAttempt(ctx, article.ID, destinationName)
	if err != nil {
		return nil, nil, err
	}

	if _, err = tx.AppendAuditEvent(ctx, models.EventPublishAttemptStarted, &article.ID, destinationName, models.JSONMap{
		"attempt_id":    attempt.ID,
		"article_title": article.Title,
	}); err != nil {
		return nil, nil, err
	}

	dest, resolveErr := s.registry.Resolve(ctx, destinationName)
	if resolveErr != nil && !errors.Is(resolveErr, models.ErrNotFound) {
		return nil, nil, resolveErr
	}
	if dest == nil || !dest.Active {
		configErr := &ConfigError{
			Message: fmt.Sprintf("destination %q is not available or inactive", destinationName),
			Code:    models.ErrorCodeDestinationUnavailable,
		}
		if err = s.finalizeFailure(ctx, tx, attempt, article, &models.ErrorDetails{
			Message: configErr.Message,
			Code:    configErr.Code,
		}, models.EventPublishFailed); err != nil {
			return nil, nil, err
		}
		return attempt, configErr, nil
	}

	engine := compliance.NewEngine(tx, s.logger)
	results, err := engine.ValidateArticle(ctx, article, dest)
	if err != nil {
		return nil, nil, err
	}

	// Persist the result map immediately so partial diagnostics survive a
	// later destination-side failure.
	if err = tx.SetAttemptComplianceResults(ctx, attempt.ID, results); err != nil {
		return nil, nil, err
	}
	attempt.ComplianceResults = results

	for _, result := range results {
		s.metrics.RecordCheck(result.Rule, result.Passed)
	}

	if !results.AllPassed() {
		failed := results.Failed()
		complianceErr := complianceFailure(destinationName, failed)
		if err = s.finalizeFailure(ctx, tx, attempt, article, &models.ErrorDetails{
			Message:      complianceErr.Message,
			FailedChecks: failed,
			Code:         complianceErr.Code,
		}, models.EventPublishFailed); err != nil {
			return nil, nil, err
		}

		s.logger.Warn("article failed compliance checks",
			logger.String("article_id", article.ID.String()),
			logger.String("destination", destinationName),
			logger.Int("failed_checks", len(failed)))

		return attempt, complianceErr, nil
	}

	externalID, deliverErr := s.gateway.Deliver(ctx, article, dest)
	if deliverErr != nil {
		outcome := classifyDeliveryError(deliverErr, dest)
		details := &models.ErrorDetails{
			Message: deliverErr.Error(),
			Code:    errorCode(outcome),
			Trace:   fmt.Sprintf("%+v", deliverErr),
		}
		if err = s.finalizeFailure(ctx, tx, attempt, article, details, models.EventPublishError); err != nil {
			return nil, nil, err
		}

		s.logger.Error("destination delivery failed",
			logger.String("article_id", article.ID.String()),
			logger.String("destination", destinationName),
			logger.Error(deliverErr))

		return attempt, outcome, nil
	}

	if err = tx.FinalizeAttemptSuccess(ctx, attempt.ID, externalID); err != nil {
		return nil, nil, err
	}
	if err = s.reloadAttempt(ctx, tx, attempt); err != nil {
		return nil, nil, err
	}

	if err = tx.UpdateArticleStatus(ctx, article.ID, models.ArticleStatusPublished); err != nil && !errors.Is(err, models.ErrNotFound) {
		return nil, nil, err
	}

	if _, err = tx.AppendAuditEvent(ctx, models.EventPublishSuccess, &article.ID, destinationName, models.JSONMap{
		"attempt_id":  attempt.ID,
		"external_id": externalID,
	}); err != nil {
		return nil, nil, err
	}

	s.logger.Info("article published",
		logger.String("article_id", article.ID.String()),
		logger.String("destination", destinationName),
		logger.String("external_id", externalID))

	return attempt, nil, nil
}

// PublishToMany publishes the article to each destination independently.
// A failure on one destination never prevents attempts on the others.
func (s *Service) PublishToMany(ctx context.Context, article *models.Article, destinationNames []string) MultiResult {
	results := make(MultiResult, len(destinationNames))

	for _, name := range destinationNames {
		attempt, err := s.Publish(ctx, article, name)
		if err != nil {
			outcome := Outcome{Attempt: attempt, Error: err.Error()}
			var complianceErr *ComplianceError
			if errors.As(err, &complianceErr) {
				outcome.FailedChecks = complianceErr.FailedChecks
			}
			results[name] = outcome
			continue
		}
		results[name] = Outcome{Attempt: attempt}
	}

	return results
}

func (s *Service) finalizeFailure(ctx context.Context, tx *database.Repository, attempt *models.PublishAttempt, article *models.Article, details *models.ErrorDetails, eventType string) error {
	if err := tx.FinalizeAttemptFailure(ctx, attempt.ID, details); err != nil {
		return err
	}
	if err := s.reloadAttempt(ctx, tx, attempt); err != nil {
		return err
	}

	if err := tx.UpdateArticleStatus(ctx, article.ID, models.ArticleStatusFailed); err != nil && !errors.Is(err, models.ErrNotFound) {
		return err
	}

	eventContext := models.JSONMap{
		"attempt_id": attempt.ID,
		"error":      details.Message,
	}
	if len(details.FailedChecks) > 0 {
		eventContext["failed_checks"] = details.FailedChecks
	}

	_, err := tx.AppendAuditEvent(ctx, eventType, &article.ID, attempt.DestinationName, eventContext)
	return err
}

func (s *Service) reloadAttempt(ctx context.Context, tx *database.Repository, attempt *models.PublishAttempt) error {
	reloaded, err := tx.GetAttemptByID(ctx, attempt.ID)
	if err != nil {
		return err
	}
	*attempt = *reloaded
	return nil
}

func classifyDeliveryError(err error, dest *models.Destination) error {
	if errors.Is(err, protocol.ErrUnknownFamily) {
		return &ConfigError{
			Message: fmt.Sprintf("destination %q has unknown family %q", dest.Name, dest.Family),
			Code:    models.ErrorCodeUnknownFamily,
		}
	}

	var rejectionErr *protocol.RejectionError
	if errors.As(err, &rejectionErr) {
		return &ProtocolError{Message: rejectionErr.Error(), Code: models.ErrorCodeProtocolRejected, Rejected: true}
	}

	return &ProtocolError{Message: err.Error(), Code: models.ErrorCodeDeliveryFailed}
}

func errorCode(outcome error) string {
	var protocolErr *ProtocolError
	if errors.As(outcome, &protocolErr) {
		return protocolErr.Code
	}
	var configErr *ConfigError
	if errors.As(outcome, &configErr) && configErr.Code != "" {
		return configErr.Code
	}
	return models.ErrorCodeDeliveryFailed
}
