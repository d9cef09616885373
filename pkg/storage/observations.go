package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/synaptica-ai/icu-risk/pkg/features"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var ErrObservationSetNotFound = errors.New("observation set not found")

const (
	SourceEngineered = "engineered"
	SourceManual     = "manual"
)

// ObservationSet is one persisted feature record snapshot for an encounter.
// Drivers and predictions are always recomputed from Features.
type ObservationSet struct {
	ID                uuid.UUID         `gorm:"primaryKey;column:id"`
	EncounterID       string            `gorm:"column:encounter_id;index:idx_observation_sets_encounter_recorded,priority:1"`
	PatientID         string            `gorm:"column:patient_id"`
	Features          datatypes.JSONMap `gorm:"column:features"`
	Source            string            `gorm:"column:source"`
	RecordedAt        time.Time         `gorm:"column:recorded_at;index:idx_observation_sets_encounter_recorded,priority:2"`
	RecordedByName    string            `gorm:"column:recorded_by_name"`
	ValidationMessage string            `gorm:"column:validation_message"`
	MissingFeatures   datatypes.JSON    `gorm:"column:missing_features"`
	ImputedFeatures   datatypes.JSON    `gorm:"column:imputed_features"`
	CreatedAt         time.Time         `gorm:"column:created_at"`
}

func (ObservationSet) TableName() string { return "observation_sets" }

// NewObservationSet snapshots rec. The missing list is derived from rec so it
// always agrees with the stored features.
func NewObservationSet(encounterID, patientID, source string, rec features.Record, imputed []features.Name) *ObservationSet {
	missingJSON, _ := json.Marshal(features.NamesToStrings(rec.Missing()))
	if imputed == nil {
		imputed = []features.Name{}
	}
	imputedJSON, _ := json.Marshal(features.NamesToStrings(imputed))
	return &ObservationSet{
		ID:              uuid.New(),
		EncounterID:     encounterID,
		PatientID:       patientID,
		Features:        datatypes.JSONMap(rec.ToMap()),
		Source:          source,
		RecordedAt:      time.Now().UTC(),
		MissingFeatures: datatypes.JSON(missingJSON),
		ImputedFeatures: datatypes.JSON(imputedJSON),
	}
}

// Record parses the stored features back into the closed feature set.
func (o ObservationSet) Record() (features.Record, error) {
	return features.ParseRecord(map[string]interface{}(o.Features))
}

func (o ObservationSet) Missing() []string {
	return decodeNames(o.MissingFeatures)
}

func (o ObservationSet) Imputed() []string {
	return decodeNames(o.ImputedFeatures)
}

func decodeNames(raw datatypes.JSON) []string {
	out := []string{}
	if len(raw) == 0 {
		return out
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return []string{}
	}
	return out
}

type ObservationRepository struct {
	db *gorm.DB
}

func NewObservationRepository(db *gorm.DB) *ObservationRepository {
	return &ObservationRepository{db: db}
}

func (r *ObservationRepository) AutoMigrate() error {
	return r.db.AutoMigrate(&ObservationSet{})
}

func (r *ObservationRepository) Create(ctx context.Context, set *ObservationSet) error {
	if set.ID == uuid.Nil {
		set.ID = uuid.New()
	}
	if set.RecordedAt.IsZero() {
		set.RecordedAt = time.Now().UTC()
	}
	set.CreatedAt = time.Now().UTC()
	if err := r.db.WithContext(ctx).Create(set).Error; err != nil {
		return fmt.Errorf("create observation set: %w", err)
	}
	return nil
}

func (r *ObservationRepository) Get(ctx context.Context, id uuid.UUID) (ObservationSet, error) {
	var set ObservationSet
	err := r.db.WithContext(ctx).First(&set, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ObservationSet{}, ErrObservationSetNotFound
	}
	return set, err
}

// Latest returns the most recently recorded set for the encounter.
func (r *ObservationRepository) Latest(ctx context.Context, encounterID string) (ObservationSet, error) {
	var set ObservationSet
	err := r.db.WithContext(ctx).
		Where("encounter_id = ?", encounterID).
		Order("recorded_at DESC").
		Order("created_at DESC").
		First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ObservationSet{}, ErrObservationSetNotFound
	}
	return set, err
}
