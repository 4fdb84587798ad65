package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the storefront's Prometheus collectors on a private registry
type Metrics struct {
	registry *prometheus.Registry

	loginAttempts *prometheus.CounterVec
	loginDuration prometheus.Histogram
	logouts       prometheus.Counter
}

// New registers the storefront collectors plus Go and process collectors
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "login_attempts_total",
			Help:      "Login form submissions by outcome.",
		}, []string{"outcome"}),
		loginDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "storefront",
			Name:      "auth_request_duration_seconds",
			Help:      "Time spent waiting on the upstream auth service.",
			Buckets:   prometheus.DefBuckets,
		}),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "storefront",
			Name:      "logouts_total",
			Help:      "Sessions cleared by logout.",
		}),
	}

	reg.MustRegister(
		m.loginAttempts,
		m.loginDuration,
		m.logouts,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// ObserveLogin records one submission's outcome and the time its upstream auth call took
func (m *Metrics) ObserveLogin(outcome string, d time.Duration) {
	m.loginAttempts.WithLabelValues(outcome).Inc()
	m.loginDuration.Observe(d.Seconds())
}

// ObserveLogout records one logout
func (m *Metrics) ObserveLogout() {
	m.logouts.Inc()
}

// Registry exposes the underlying registry, mainly for tests
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
