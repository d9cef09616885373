package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/common/models"
	"github.com/synaptica-ai/icu-risk/pkg/risk"
	"github.com/synaptica-ai/icu-risk/pkg/storage"
)

type AssessmentHandler struct {
	service *risk.Service
}

func NewAssessmentHandler(service *risk.Service) *AssessmentHandler {
	return &AssessmentHandler{service: service}
}

func (h *AssessmentHandler) Register(r *mux.Router) {
	r.HandleFunc("/encounters/{id}/assessments", h.handleAssess).Methods(http.MethodPost)
	r.HandleFunc("/assessments/{id}", h.handleDetail).Methods(http.MethodGet)
	r.HandleFunc("/assessments/{id}/comment", h.handleComment).Methods(http.MethodPatch)
}

func (h *AssessmentHandler) handleAssess(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req models.AssessmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid assessment request", Details: err.Error()})
		return
	}

	encounterID := mux.Vars(r)["id"]
	a, err := h.service.Assess(r.Context(), encounterID, req.DoctorName)
	if err != nil {
		h.fail(w, err, "failed to create risk assessment")
		return
	}
	writeJSONStatus(w, http.StatusCreated, a)
}

func (h *AssessmentHandler) handleDetail(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	showAll, _ := strconv.ParseBool(r.URL.Query().Get("all"))
	detail, err := h.service.Detail(r.Context(), id, showAll)
	if err != nil {
		h.fail(w, err, "failed to load risk assessment")
		return
	}
	writeJSON(w, detail)
}

func (h *AssessmentHandler) handleComment(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}
	defer r.Body.Close()
	var req models.CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid comment", Details: err.Error()})
		return
	}
	if err := h.service.Comment(r.Context(), id, req.DoctorComment); err != nil {
		h.fail(w, err, "failed to save comment")
		return
	}
	writeJSON(w, map[string]string{"status": "ok"})
}

func (h *AssessmentHandler) fail(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, risk.ErrDoctorNameRequired):
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, risk.ErrNoObservations):
		writeError(w, http.StatusConflict, models.ErrorResponse{Error: err.Error()})
	case errors.Is(err, risk.ErrIncompleteObservation):
		writeError(w, http.StatusUnprocessableEntity, models.ErrorResponse{Error: "observation set is incomplete", Details: err.Error()})
	case errors.Is(err, risk.ErrAssessmentNotFound), errors.Is(err, storage.ErrObservationSetNotFound):
		writeError(w, http.StatusNotFound, models.ErrorResponse{Error: err.Error()})
	default:
		logger.Get().WithError(err).Error(msg)
		http.Error(w, msg, http.StatusInternalServerError)
	}
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid assessment id"})
		return uuid.Nil, false
	}
	return id, true
}
