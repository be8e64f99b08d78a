package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "authsvc"

// PrometheusRecorder exports metrics through a dedicated registry.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	logins          *prometheus.CounterVec
	refreshes       *prometheus.CounterVec
	registrations   *prometheus.CounterVec
	passwordChanges *prometheus.CounterVec
	branchSwitches  *prometheus.CounterVec
	tokensIssued    *prometheus.CounterVec
	passwordHash    prometheus.Histogram
	branchCache     *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// NewPrometheus registers all collectors on a fresh registry, together with
// the Go runtime and process collectors.
func NewPrometheus() *PrometheusRecorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	outcome := func(name, help string) *prometheus.CounterVec {
		return factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      name,
			Help:      help,
		}, []string{"outcome"})
	}

	return &PrometheusRecorder{
		registry:        reg,
		logins:          outcome("logins_total", "Login attempts by outcome"),
		refreshes:       outcome("refreshes_total", "Token refresh attempts by outcome"),
		registrations:   outcome("registrations_total", "Registrations by outcome"),
		passwordChanges: outcome("password_changes_total", "Password changes by outcome"),
		branchSwitches:  outcome("branch_switches_total", "Active branch switches by outcome"),
		tokensIssued: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "tokens_issued_total",
			Help:      "Signed tokens by type",
		}, []string{"type"}),
		passwordHash: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "auth",
			Name:      "password_hash_duration_seconds",
			Help:      "Time spent hashing or verifying passwords",
			Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2},
		}),
		branchCache: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "branch_lookups_total",
			Help:      "Branch name cache lookups by result",
		}, []string{"result"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (p *PrometheusRecorder) Handler() http.Handler {
	return promhttp.HandlerFor(p.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (p *PrometheusRecorder) Registry() *prometheus.Registry {
	return p.registry
}

// IncLogin increments the login counter.
func (p *PrometheusRecorder) IncLogin(outcome string) {
	p.logins.WithLabelValues(outcome).Inc()
}

// IncRefresh increments the refresh counter.
func (p *PrometheusRecorder) IncRefresh(outcome string) {
	p.refreshes.WithLabelValues(outcome).Inc()
}

// IncRegistration increments the registration counter.
func (p *PrometheusRecorder) IncRegistration(outcome string) {
	p.registrations.WithLabelValues(outcome).Inc()
}

// IncPasswordChange increments the password change counter.
func (p *PrometheusRecorder) IncPasswordChange(outcome string) {
	p.passwordChanges.WithLabelValues(outcome).Inc()
}

// IncBranchSwitch increments the branch switch counter.
func (p *PrometheusRecorder) IncBranchSwitch(outcome string) {
	p.branchSwitches.WithLabelValues(outcome).Inc()
}

// IncTokenIssued increments the issued token counter.
func (p *PrometheusRecorder) IncTokenIssued(tokenType string) {
	p.tokensIssued.WithLabelValues(tokenType).Inc()
}

// ObservePasswordHash records hashing latency.
func (p *PrometheusRecorder) ObservePasswordHash(duration time.Duration) {
	p.passwordHash.Observe(duration.Seconds())
}

// IncBranchCacheHit records a cache hit.
func (p *PrometheusRecorder) IncBranchCacheHit() {
	p.branchCache.WithLabelValues("hit").Inc()
}

// IncBranchCacheMiss records a cache miss.
func (p *PrometheusRecorder) IncBranchCacheMiss() {
	p.branchCache.WithLabelValues("miss").Inc()
}

// ObserveHTTPRequest records a served request.
func (p *PrometheusRecorder) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	p.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	p.httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
