// Package metrics exposes Prometheus counters for sessions and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns a dedicated registry so tests and multiple servers do not
// collide on the global one.
type Metrics struct {
	registry      *prometheus.Registry
	loginAttempts *prometheus.CounterVec
	logouts       prometheus.Counter
	httpRequests  *prometheus.CounterVec
}

// New creates and registers all collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		loginAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codemonkey_login_attempts_total",
				Help: "Login attempts by result",
			},
			[]string{"result"},
		),
		logouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "codemonkey_logouts_total",
			Help: "Completed logouts",
		}),
		httpRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "codemonkey_http_requests_total",
				Help: "HTTP requests by method and status",
			},
			[]string{"method", "status"},
		),
	}
	m.registry.MustRegister(m.loginAttempts, m.logouts, m.httpRequests)
	return m
}

// LoginAttempt implements session.Recorder.
func (m *Metrics) LoginAttempt(result string) {
	m.loginAttempts.WithLabelValues(result).Inc()
}

// Logout implements session.Recorder.
func (m *Metrics) Logout() {
	m.logouts.Inc()
}

// Request counts one served HTTP request.
func (m *Metrics) Request(method string, status int) {
	m.httpRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
