package api

import (
	"encoding/json"
	"net/http"

	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/common/models"
)

func writeJSON(w http.ResponseWriter, data interface{}) {
	writeJSONStatus(w, http.StatusOK, data)
}

func writeJSONStatus(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Get().WithError(err).Error("failed to write json response")
	}
}

func writeError(w http.ResponseWriter, status int, body models.ErrorResponse) {
	writeJSONStatus(w, status, body)
}
