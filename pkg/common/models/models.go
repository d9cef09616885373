package models

import (
	"time"
)

// Event Bus models
type Event struct {
	ID        string                 `json:"id"`
	Type      string                 `json:"type"` // measurements, features-assembled, assembly-failed
	Source    string                 `json:"source"`
	Data      map[string]interface{} `json:"data"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]string      `json:"metadata,omitempty"`
}

const (
	EventMeasurements      = "measurements"
	EventFeaturesAssembled = "features-assembled"
	EventAssemblyFailed    = "assembly-failed"
)

// API error body
type ErrorResponse struct {
	Error   string      `json:"error"`
	Details string      `json:"details,omitempty"`
	Kind    string      `json:"kind,omitempty"`
	Fields  interface{} `json:"fields,omitempty"`
}

// Observation sets
type ManualObservationRequest struct {
	Features       map[string]interface{} `json:"features"`
	RecordedByName string                 `json:"recorded_by_name"`
	RecordedAt     *time.Time             `json:"recorded_at,omitempty"`
}

type ObservationSetResponse struct {
	ID              string             `json:"id"`
	EncounterID     string             `json:"encounter_id"`
	Features        map[string]float64 `json:"features"`
	Source          string             `json:"source"`
	RecordedAt      time.Time          `json:"recorded_at"`
	RecordedByName  string             `json:"recorded_by_name,omitempty"`
	MissingFeatures []string           `json:"missing_features"`
	ImputedFeatures []string           `json:"imputed_features"`
	CreatedAt       time.Time          `json:"created_at"`
}

// Risk assessments
type AssessmentRequest struct {
	DoctorName string `json:"doctor_name"`
}

type CommentRequest struct {
	DoctorComment string `json:"doctor_comment"`
}
