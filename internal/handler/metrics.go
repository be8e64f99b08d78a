package handler

import (
	"net/http"
)

// MetricsExposer is implemented by recorders that can serve their own
// exposition format.
type MetricsExposer interface {
	Handler() http.Handler
}

// MetricsHandler exposes collected metrics.
type MetricsHandler struct {
	exposer MetricsExposer
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(exposer MetricsExposer) *MetricsHandler {
	return &MetricsHandler{exposer: exposer}
}

// Metrics serves the registry in Prometheus exposition format.
//
// GET /metrics
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.exposer == nil {
		writeError(w, http.StatusServiceUnavailable, CodeInternal, "Métricas no disponibles")
		return
	}
	h.exposer.Handler().ServeHTTP(w, r)
}
