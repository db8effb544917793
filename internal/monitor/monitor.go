// Package monitor aggregates attempt and audit history into operational
// health signals and alerts.
package monitor

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/jonesrussell/feedgate/internal/database"
	"github.com/jonesrussell/feedgate/internal/logger"
	"github.com/jonesrussell/feedgate/internal/models"
	"github.com/jonesrussell/feedgate/internal/registry"
)

// Health status values. Checks only ever escalate the status, never lower it.
const (
	StatusHealthy  = "healthy"
	StatusWarning  = "warning"
	StatusCritical = "critical"
)

// Issue types raised by the health checks.
const (
	IssueConsecutiveFailures = "consecutive_failures"
	IssueStaleRules          = "stale_rules"
	IssueLowSuccessRate      = "low_success_rate"
)

const (
	// DefaultFailureThreshold is the failed-attempt count within the failure
	// window that escalates a destination to warning.
	DefaultFailureThreshold = 5

	// DefaultMinSuccessRate is the 24h success-rate percentage below which a
	// destination escalates the system to critical.
	DefaultMinSuccessRate = 80.0

	defaultCheckInterval = 15 * time.Minute
	failureWindow        = time.Hour
	metricsWindow        = 24 * time.Hour
)

// Issue is one problem surfaced by a health check.
type Issue struct {
	Type        string         `json:"type"`
	Destination string         `json:"destination,omitempty"`
	Message     string         `json:"message"`
	Details     map[string]any `json:"details,omitempty"`
}

// DestinationMetrics summarizes one destination's trailing-24h attempts.
type DestinationMetrics struct {
	TotalAttempts      int     `json:"total_attempts"`
	SuccessfulAttempts int     `json:"successful_attempts"`
	SuccessRate        float64 `json:"success_rate"`
}

// Health is the aggregate verdict of one health check run.
type Health struct {
	OverallStatus string                        `json:"overall_status"`
	Issues        []Issue                       `json:"issues"`
	Metrics       map[string]DestinationMetrics `json:"metrics"`
}

// escalate raises the overall status to at least level.
func (h *Health) escalate(level string) {
	if level == StatusCritical || (level == StatusWarning && h.OverallStatus == StatusHealthy) {
		h.OverallStatus = level
	}
}

// Notifier receives structured alerts. Delivery mechanics (email, chat
// webhook) live behind this interface, outside the service.
type Notifier interface {
	SendAlert(ctx context.Context, alert AlertPayload) error
}

// AlertPayload is the structured alert handed to the Notifier.
type AlertPayload struct {
	Status    string    `json:"status"`
	Title     string    `json:"title"`
	Messages  []string  `json:"messages"`
	Timestamp time.Time `json:"timestamp"`
}

// Config holds the monitor thresholds.
type Config struct {
	FailureThreshold int
	MinSuccessRate   float64
	CheckInterval    time.Duration
}

// Monitor runs the health checks and issues alerts.
type Monitor struct {
	repo     *database.Repository
	registry *registry.Registry
	notifier Notifier
	cfg      Config
	logger   logger.Logger

	stopChan chan struct{}
	wg       sync.WaitGroup
	started  bool
	mu       sync.Mutex
}

// NewMonitor creates a new health monitor
func NewMonitor(repo *database.Repository, reg *registry.Registry, notifier Notifier, cfg Config, log logger.Logger) *Monitor {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = DefaultFailureThreshold
	}
	if cfg.MinSuccessRate <= 0 {
		cfg.MinSuccessRate = DefaultMinSuccessRate
	}
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = defaultCheckInterval
	}

	return &Monitor{
		repo:     repo,
		registry: reg,
		notifier: notifier,
		cfg:      cfg,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

// CheckSystemHealth runs the health checks in order. Each check can raise
// the overall status but never lower it.
func (m *Monitor) CheckSystemHealth(ctx context.Context) (*Health, error) {
	health := &Health{
		OverallStatus: StatusHealthy,
		Issues:        []Issue{},
		Metrics:       map[string]DestinationMetrics{},
	}

	destinations, err := m.registry.ActiveDestinations(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve active destinations: %w", err)
	}

	if err := m.checkConsecutiveFailures(ctx, destinations, health); err != nil {
		return nil, err
	}
	if err := m.checkStaleRules(ctx, health); err != nil {
		return nil, err
	}
	if err := m.checkSuccessRates(ctx, destinations, health); err != nil {
		return nil, err
	}

	return health, nil
}

// checkConsecutiveFailures escalates to warning for any active destination
// whose failed-attempt count in the trailing hour meets the threshold.
func (m *Monitor) checkConsecutiveFailures(ctx context.Context, destinations []models.Destination, health *Health) error {
	since := time.Now().Add(-failureWindow)

	for _, dest := range destinations {
		failures, err := m.repo.CountAttempts(ctx, dest.Name, models.AttemptStatusFailed, since)
		if err != nil {
			return err
		}

		if failures >= m.cfg.FailureThreshold {
			health.Issues = append(health.Issues, Issue{
				Type:        IssueConsecutiveFailures,
				Destination: dest.Name,
				Message:     fmt.Sprintf("Destination %s has %d consecutive failures", dest.Name, failures),
				Details:     map[string]any{"failure_count": failures},
			})
			health.escalate(StatusWarning)
		}
	}

	return nil
}

// checkStaleRules escalates to warning when a globally active rule was not
// executed by any compliance run in the trailing 24 hours.
func (m *Monitor) checkStaleRules(ctx context.Context, health *Health) error {
	since := time.Now().Add(-metricsWindow)

	audits, err := m.repo.ListAuditEventsByType(ctx, models.EventComplianceCheckCompleted, since, 0)
	if err != nil {
		return err
	}

	executed := make(map[string]bool)
	for _, audit := range audits {
		names, ok := audit.Context["rule_names"].([]any)
		if !ok {
			continue
		}
		for _, name := range names {
			if s, ok := name.(string); ok {
				executed[s] = true
			}
		}
	}

	activeRules, err := m.repo.ListRules(ctx, true)
	if err != nil {
		return err
	}

	var staleRules []string
	for _, rule := range activeRules {
		if !executed[rule.Name] {
			staleRules = append(staleRules, rule.Name)
		}
	}

	if len(staleRules) > 0 {
		sort.Strings(staleRules)
		health.Issues = append(health.Issues, Issue{
			Type:    IssueStaleRules,
			Message: "Some compliance rules haven't been executed recently",
			Details: map[string]any{"stale_rules": staleRules},
		})
		health.escalate(StatusWarning)
	}

	return nil
}

// checkSuccessRates computes 24h per-destination metrics and escalates to
// critical for any destination below the minimum success rate. A destination
// with no attempts in the window counts as a 0% rate and escalates too.
func (m *Monitor) checkSuccessRates(ctx context.Context, destinations []models.Destination, health *Health) error {
	since := time.Now().Add(-metricsWindow)

	for _, dest := range destinations {
		total, err := m.repo.CountAttempts(ctx, dest.Name, "", since)
		if err != nil {
			return err
		}
		successful, err := m.repo.CountAttempts(ctx, dest.Name, models.AttemptStatusSuccess, since)
		if err != nil {
			return err
		}

		successRate := 0.0
		if total > 0 {
			successRate = math.Round(float64(successful)/float64(total)*10000) / 100
		}

		health.Metrics[dest.Name] = DestinationMetrics{
			TotalAttempts:      total,
			SuccessfulAttempts: successful,
			SuccessRate:        successRate,
		}

		if successRate < m.cfg.MinSuccessRate {
			health.Issues = append(health.Issues, Issue{
				Type:        IssueLowSuccessRate,
				Destination: dest.Name,
				Message:     fmt.Sprintf("Destination %s has success rate below %.0f%%", dest.Name, m.cfg.MinSuccessRate),
				Details:     map[string]any{"success_rate": successRate},
			})
			health.escalate(StatusCritical)
		}
	}

	return nil
}

// issueSeverity orders alert messages: most severe first.
var issueSeverity = map[string]int{
	IssueLowSuccessRate:      0,
	IssueConsecutiveFailures: 1,
	IssueStaleRules:          2,
}

// SendAlert hands the health verdict to the notifier as a structured
// payload. No-op when the system is healthy.
func (m *Monitor) SendAlert(ctx context.Context, health *Health) error {
	if health.OverallStatus == StatusHealthy {
		return nil
	}

	issues := make([]Issue, len(health.Issues))
	copy(issues, health.Issues)
	sort.SliceStable(issues, func(i, j int) bool {
		return issueSeverity[issues[i].Type] < issueSeverity[issues[j].Type]
	})

	messages := make([]string, 0, len(issues))
	for _, issue := range issues {
		messages = append(messages, issue.Message)
	}

	alert := AlertPayload{
		Status:    health.OverallStatus,
		Title:     "Syndication Compliance Alert",
		Messages:  messages,
		Timestamp: time.Now(),
	}

	if err := m.notifier.SendAlert(ctx, alert); err != nil {
		return fmt.Errorf("send alert: %w", err)
	}

	m.logger.Info("health alert sent",
		logger.String("status", health.OverallStatus),
		logger.Int("issues", len(messages)))

	return nil
}

// Start begins the periodic health check loop
func (m *Monitor) Start(ctx context.Context) {
	m.mu.Lock()
	if m.started {
		m.mu.Unlock()
		return
	}
	m.started = true
	m.mu.Unlock()

	m.wg.Add(1)
	go m.run(ctx)

	m.logger.Info("health monitor started",
		logger.Duration("check_interval", m.cfg.CheckInterval))
}

// Stop gracefully stops the monitor
func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.started {
		m.mu.Unlock()
		return
	}
	m.mu.Unlock()

	close(m.stopChan)
	m.wg.Wait()
	m.logger.Info("health monitor stopped")
}

func (m *Monitor) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.checkOnce(ctx)
		case <-m.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (m *Monitor) checkOnce(ctx context.Context) {
	health, err := m.CheckSystemHealth(ctx)
	if err != nil {
		m.logger.Error("health check failed", logger.Error(err))
		return
	}

	if alertErr := m.SendAlert(ctx, health); alertErr != nil {
		m.logger.Error("failed to send health alert", logger.Error(alertErr))
	}
}
