package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus metrics for the authentication core.
type Metrics struct {
	TokensIssued       *prometheus.CounterVec
	TokenVerifyFailed  prometheus.Counter
	GuardDecisions     *prometheus.CounterVec
	SessionResolutions *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics.
func New() *Metrics {
	return &Metrics{
		TokensIssued: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zonegate_tokens_issued_total",
			Help: "Total number of signed tokens issued, by purpose",
		}, []string{"purpose"}),
		TokenVerifyFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "zonegate_token_verify_failures_total",
			Help: "Total number of token verifications that failed",
		}),
		GuardDecisions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zonegate_guard_decisions_total",
			Help: "Total number of zone guard decisions, by zone and outcome",
		}, []string{"zone", "outcome"}),
		SessionResolutions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "zonegate_session_resolutions_total",
			Help: "Total number of session resolutions, by outcome",
		}, []string{"outcome"}),
	}
}

// IncrementTokensIssued records one issued token for the given purpose.
func (m *Metrics) IncrementTokensIssued(purpose string) {
	m.TokensIssued.WithLabelValues(purpose).Inc()
}

// IncrementTokenVerifyFailed records one failed verification.
func (m *Metrics) IncrementTokenVerifyFailed() {
	m.TokenVerifyFailed.Inc()
}

// IncrementGuardDecision records one guard decision.
func (m *Metrics) IncrementGuardDecision(zone, outcome string) {
	m.GuardDecisions.WithLabelValues(zone, outcome).Inc()
}

// IncrementSessionResolution records one resolution outcome.
func (m *Metrics) IncrementSessionResolution(outcome string) {
	m.SessionResolutions.WithLabelValues(outcome).Inc()
}
