// Package metrics exposes Prometheus instrumentation for the publish
// pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Attempt outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Metrics holds the service's Prometheus collectors.
type Metrics struct {
	attemptsTotal *prometheus.CounterVec
	checksTotal   *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		attemptsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedgate",
			Name:      "publish_attempts_total",
			Help:      "Finalized publish attempts by destination and outcome.",
		}, []string{"destination", "outcome"}),
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "feedgate",
			Name:      "compliance_checks_total",
			Help:      "Executed compliance checks by rule and result.",
		}, []string{"rule", "result"}),
	}
}

// RecordAttempt counts one finalized publish attempt.
func (m *Metrics) RecordAttempt(destination, outcome string) {
	m.attemptsTotal.WithLabelValues(destination, outcome).Inc()
}

// RecordCheck counts one executed compliance check.
func (m *Metrics) RecordCheck(rule string, passed bool) {
	result := "failed"
	if passed {
		result = "passed"
	}
	m.checksTotal.WithLabelValues(rule, result).Inc()
}
