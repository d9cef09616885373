package api

import (
	"encoding/json"
	"errors"
	"io/ioutil"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/common/models"
	"github.com/synaptica-ai/icu-risk/pkg/features"
	"github.com/synaptica-ai/icu-risk/pkg/pipeline"
	"github.com/synaptica-ai/icu-risk/pkg/storage"
)

// FeatureHandler serves feature engineering and observation-set entry.
type FeatureHandler struct {
	service *pipeline.Service
}

func NewFeatureHandler(service *pipeline.Service) *FeatureHandler {
	return &FeatureHandler{service: service}
}

func (h *FeatureHandler) Register(r *mux.Router) {
	r.HandleFunc("/features/engineer", h.handleEngineer).Methods(http.MethodPost)
	r.HandleFunc("/encounters/{id}/observations", h.handleManual).Methods(http.MethodPost)
	r.HandleFunc("/encounters/{id}/observations/engineer", h.handleEngineerEncounter).Methods(http.MethodPost)
	r.HandleFunc("/encounters/{id}/observations/latest", h.handleLatest).Methods(http.MethodGet)
}

func (h *FeatureHandler) handleEngineer(w http.ResponseWriter, r *http.Request) {
	patient, ok := decodePatient(w, r)
	if !ok {
		return
	}
	res := h.service.Assemble(patient, imputeRequested(r))
	if !res.Success {
		writeJSONStatus(w, res.Err.HTTPStatus(), res)
		return
	}
	writeJSON(w, res)
}

func (h *FeatureHandler) handleEngineerEncounter(w http.ResponseWriter, r *http.Request) {
	patient, ok := decodePatient(w, r)
	if !ok {
		return
	}
	encounterID := mux.Vars(r)["id"]
	res, set, err := h.service.Engineer(r.Context(), encounterID, patient, imputeRequested(r))
	var ferr *features.Error
	if errors.As(err, &ferr) {
		writeJSONStatus(w, ferr.HTTPStatus(), res)
		return
	}
	if err != nil {
		logger.Get().WithError(err).WithField("encounter_id", encounterID).Error("failed to store observation set")
		http.Error(w, "failed to store observation set", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, http.StatusCreated, observationResponse(*set))
}

func (h *FeatureHandler) handleManual(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()
	var req models.ManualObservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid observation set", Details: err.Error()})
		return
	}

	encounterID := mux.Vars(r)["id"]
	set, err := h.service.RecordManual(r.Context(), encounterID, req)
	var entryErr *pipeline.EntryError
	switch {
	case err == nil:
		writeJSONStatus(w, http.StatusCreated, observationResponse(*set))
	case errors.As(err, &entryErr):
		writeError(w, http.StatusBadRequest, models.ErrorResponse{
			Error:  "observation values out of range",
			Kind:   string(features.KindValidation),
			Fields: entryErr.Fields,
		})
	case errors.Is(err, pipeline.ErrRecorderRequired), features.IsInputError(err):
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error(), Kind: string(features.KindInput)})
	default:
		logger.Get().WithError(err).WithField("encounter_id", encounterID).Error("failed to store observation set")
		http.Error(w, "failed to store observation set", http.StatusInternalServerError)
	}
}

func (h *FeatureHandler) handleLatest(w http.ResponseWriter, r *http.Request) {
	encounterID := mux.Vars(r)["id"]
	entry, err := h.service.Latest(r.Context(), encounterID)
	if errors.Is(err, storage.ErrObservationSetNotFound) {
		writeError(w, http.StatusNotFound, models.ErrorResponse{Error: "no observations found for encounter"})
		return
	}
	if err != nil {
		logger.Get().WithError(err).WithField("encounter_id", encounterID).Error("failed to load observation set")
		http.Error(w, "failed to load observation set", http.StatusInternalServerError)
		return
	}
	writeJSON(w, entry)
}

func decodePatient(w http.ResponseWriter, r *http.Request) (features.PatientData, bool) {
	defer r.Body.Close()
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: "unreadable request body", Details: err.Error()})
		return features.PatientData{}, false
	}
	patient, err := features.DecodePatientData(body)
	if err != nil {
		var ferr *features.Error
		if errors.As(err, &ferr) {
			writeError(w, ferr.HTTPStatus(), models.ErrorResponse{Error: ferr.Message, Details: ferr.Details, Kind: string(ferr.Kind)})
			return features.PatientData{}, false
		}
		writeError(w, http.StatusBadRequest, models.ErrorResponse{Error: err.Error()})
		return features.PatientData{}, false
	}
	return patient, true
}

// imputeRequested is true unless ?impute= parses as false.
func imputeRequested(r *http.Request) bool {
	raw := r.URL.Query().Get("impute")
	if raw == "" {
		return true
	}
	v, err := strconv.ParseBool(raw)
	return err != nil || v
}

func observationResponse(set storage.ObservationSet) models.ObservationSetResponse {
	entry := storage.FromObservationSet(set)
	return models.ObservationSetResponse{
		ID:              set.ID.String(),
		EncounterID:     set.EncounterID,
		Features:        entry.Features,
		Source:          set.Source,
		RecordedAt:      set.RecordedAt,
		RecordedByName:  set.RecordedByName,
		MissingFeatures: entry.Missing,
		ImputedFeatures: entry.Imputed,
		CreatedAt:       set.CreatedAt,
	}
}
