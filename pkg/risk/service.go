package risk

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/drivers"
	"github.com/synaptica-ai/icu-risk/pkg/features"
	"github.com/synaptica-ai/icu-risk/pkg/observability/metrics"
	"github.com/synaptica-ai/icu-risk/pkg/storage"
)

var (
	ErrNoObservations        = errors.New("no observations found, enter vitals/labs first")
	ErrDoctorNameRequired    = errors.New("doctor_name is required")
	ErrIncompleteObservation = errors.New("observation set is incomplete")
)

type ObservationStore interface {
	Latest(ctx context.Context, encounterID string) (storage.ObservationSet, error)
	Get(ctx context.Context, id uuid.UUID) (storage.ObservationSet, error)
}

type AssessmentStore interface {
	Create(ctx context.Context, a *Assessment) error
	Get(ctx context.Context, id uuid.UUID) (Assessment, error)
	UpdateComment(ctx context.Context, id uuid.UUID, comment string) error
}

type Predictor interface {
	Predict(rec features.Record) (float64, error)
	Version() string
}

type Service struct {
	observations ObservationStore
	assessments  AssessmentStore
	predictor    Predictor
	bander       Bander
	ranker       *drivers.Ranker
}

func NewService(observations ObservationStore, assessments AssessmentStore, predictor Predictor, bander Bander, ranker *drivers.Ranker) *Service {
	return &Service{
		observations: observations,
		assessments:  assessments,
		predictor:    predictor,
		bander:       bander,
		ranker:       ranker,
	}
}

// Assess scores the encounter's latest observation set and stores the result.
func (s *Service) Assess(ctx context.Context, encounterID, doctorName string) (Assessment, error) {
	doctorName = strings.TrimSpace(doctorName)
	if doctorName == "" {
		return Assessment{}, ErrDoctorNameRequired
	}

	set, err := s.observations.Latest(ctx, encounterID)
	if errors.Is(err, storage.ErrObservationSetNotFound) {
		return Assessment{}, ErrNoObservations
	}
	if err != nil {
		return Assessment{}, err
	}
	rec, err := set.Record()
	if err != nil {
		return Assessment{}, fmt.Errorf("observation set %s: %w", set.ID, err)
	}

	prob, err := s.predictor.Predict(rec)
	if err != nil {
		return Assessment{}, fmt.Errorf("%w: %v", ErrIncompleteObservation, err)
	}
	band := s.bander.Band(prob)

	a := Assessment{
		EncounterID:      encounterID,
		ObservationSetID: set.ID,
		Risk180d:         prob * 100,
		RiskBand:         band,
		ModelVersion:     s.predictor.Version(),
		DoctorName:       doctorName,
	}
	if err := s.assessments.Create(ctx, &a); err != nil {
		return Assessment{}, err
	}
	metrics.ObserveAssessment(string(band))

	logger.WithFields(logrus.Fields{
		"assessment_id": a.ID,
		"encounter_id":  encounterID,
		"risk_band":     band,
	}).Info("risk assessment created")
	return a, nil
}

// FeatureValue is one column of the stored snapshot; Value is nil when absent.
type FeatureValue struct {
	Name  features.Name `json:"name"`
	Value *float64      `json:"value"`
}

type Detail struct {
	Assessment Assessment      `json:"assessment"`
	Drivers    drivers.Ranking `json:"drivers"`
	ShowAll    bool            `json:"show_all"`
	Features   []FeatureValue  `json:"features"`
}

// Detail recomputes the clinical drivers from the snapshot the assessment
// was made on.
func (s *Service) Detail(ctx context.Context, id uuid.UUID, showAll bool) (Detail, error) {
	a, err := s.assessments.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}
	set, err := s.observations.Get(ctx, a.ObservationSetID)
	if err != nil {
		return Detail{}, err
	}
	rec, err := set.Record()
	if err != nil {
		return Detail{}, fmt.Errorf("observation set %s: %w", set.ID, err)
	}

	values := make([]FeatureValue, 0, len(features.ExpectedNames()))
	for _, name := range features.ExpectedNames() {
		fv := FeatureValue{Name: name}
		if v, ok := rec.Get(name); ok {
			value := v
			fv.Value = &value
		}
		values = append(values, fv)
	}

	return Detail{
		Assessment: a,
		Drivers:    s.ranker.Rank(rec, showAll),
		ShowAll:    showAll,
		Features:   values,
	}, nil
}

func (s *Service) Comment(ctx context.Context, id uuid.UUID, comment string) error {
	if err := s.assessments.UpdateComment(ctx, id, strings.TrimSpace(comment)); err != nil {
		return err
	}
	logger.WithField("assessment_id", id).Info("doctor comment saved")
	return nil
}
