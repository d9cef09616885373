package api

import "github.com/gorilla/mux"

// NewRouter mounts health and metrics at the root and everything else
// under /api/v1.
func NewRouter(health *HealthHandler, featureHandler *FeatureHandler, assessmentHandler *AssessmentHandler) *mux.Router {
	r := mux.NewRouter()
	health.Register(r)
	v1 := r.PathPrefix("/api/v1").Subrouter()
	featureHandler.Register(v1)
	assessmentHandler.Register(v1)
	return r
}
