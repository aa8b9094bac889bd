package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StartupMetrics tracks the bootstrap sequence and the request pipeline it installs.
type StartupMetrics struct {
	Duration      prometheus.Gauge
	Listening     prometheus.Gauge
	CookiesParsed *prometheus.CounterVec
}

// NewStartupMetrics creates and registers startup metrics on the given registry.
func NewStartupMetrics(reg prometheus.Registerer) *StartupMetrics {
	m := &StartupMetrics{
		Duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      "duration_seconds",
			Help:      "Time from process start until the listener was bound.",
		}),
		Listening: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "bootstrap",
			Name:      "listening",
			Help:      "1 while the server is accepting connections, 0 otherwise.",
		}),
		CookiesParsed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cookies",
			Name:      "parsed_total",
			Help:      "Request cookies parsed, by whether the signature verified.",
		}, []string{"kind"}),
	}

	reg.MustRegister(m.Duration, m.Listening, m.CookiesParsed)
	return m
}

// MarkListening records the bind and how long bootstrap took.
func (m *StartupMetrics) MarkListening(elapsed time.Duration) {
	m.Duration.Set(elapsed.Seconds())
	m.Listening.Set(1)
}

// MarkStopped clears the listening gauge.
func (m *StartupMetrics) MarkStopped() {
	m.Listening.Set(0)
}

// RecordCookie counts one parsed cookie; kind is "signed" or "plain".
func (m *StartupMetrics) RecordCookie(kind string) {
	m.CookiesParsed.WithLabelValues(kind).Inc()
}
