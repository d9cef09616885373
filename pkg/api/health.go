package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/icu-risk/pkg/observability/metrics"
)

type HealthHandler struct {
	version string
}

func NewHealthHandler(modelVersion string) *HealthHandler {
	return &HealthHandler{version: modelVersion}
}

func (h *HealthHandler) Register(r *mux.Router) {
	r.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/metrics", h.handleMetrics).Methods(http.MethodGet)
}

func (h *HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "healthy", "model_version": h.version})
}

func (h *HealthHandler) handleMetrics(w http.ResponseWriter, r *http.Request) {
	metrics.WritePrometheus(w)
}
