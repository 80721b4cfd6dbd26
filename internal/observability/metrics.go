package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AuthMetrics records authentication pipeline outcomes.
type AuthMetrics interface {
	// RecordAuthentication counts one pipeline outcome; kind is empty on success
	RecordAuthentication(result, kind string)
	// RecordVerification counts one cryptographic verification attempt
	RecordVerification(tokenUse, status string)
}

// Ensure implementations satisfy AuthMetrics at compile time
var (
	_ AuthMetrics = (*PrometheusMetrics)(nil)
	_ AuthMetrics = NoopMetrics{}
)

// PrometheusMetrics holds the Prometheus collectors for authentication
type PrometheusMetrics struct {
	AuthOutcomesTotal      *prometheus.CounterVec
	AuthVerificationsTotal *prometheus.CounterVec
}

// NewPrometheusMetrics creates the collectors and registers them with reg
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	factory := promauto.With(reg)
	return &PrometheusMetrics{
		AuthOutcomesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_outcomes_total",
				Help: "Total number of request authentication outcomes",
			},
			[]string{"result", "kind"},
		),
		AuthVerificationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auth_verifications_total",
				Help: "Total number of cryptographic token verification attempts",
			},
			[]string{"token_use", "status"},
		),
	}
}

func (m *PrometheusMetrics) RecordAuthentication(result, kind string) {
	m.AuthOutcomesTotal.WithLabelValues(result, kind).Inc()
}

func (m *PrometheusMetrics) RecordVerification(tokenUse, status string) {
	m.AuthVerificationsTotal.WithLabelValues(tokenUse, status).Inc()
}

// NoopMetrics discards everything; used when metrics are disabled
type NoopMetrics struct{}

func (NoopMetrics) RecordAuthentication(string, string) {}
func (NoopMetrics) RecordVerification(string, string)   {}
