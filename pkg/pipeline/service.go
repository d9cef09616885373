package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/common/models"
	"github.com/synaptica-ai/icu-risk/pkg/features"
	"github.com/synaptica-ai/icu-risk/pkg/observability/metrics"
	"github.com/synaptica-ai/icu-risk/pkg/storage"
)

const eventSource = "icu-risk-pipeline"

var ErrRecorderRequired = errors.New("recorded_by_name is required")

type ObservationStore interface {
	Create(ctx context.Context, set *storage.ObservationSet) error
	Latest(ctx context.Context, encounterID string) (storage.ObservationSet, error)
}

type FeatureCache interface {
	Put(ctx context.Context, entry storage.CachedFeatures) error
	Get(ctx context.Context, encounterID string) (storage.CachedFeatures, bool, error)
}

type Publisher interface {
	PublishEvent(ctx context.Context, key, eventType, source string, data map[string]interface{}) error
}

// EntryError carries the per-field violations of a manually entered set.
type EntryError struct {
	Fields []features.FieldError
}

func (e *EntryError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = string(f.Feature)
	}
	return fmt.Sprintf("observation values out of range: %s", strings.Join(names, ", "))
}

// Service turns assembled or hand-entered feature records into stored
// observation sets. Cache and publisher are optional.
type Service struct {
	assembler    *features.Assembler
	observations ObservationStore
	cache        FeatureCache
	publisher    Publisher
	impute       bool
}

func NewService(assembler *features.Assembler, observations ObservationStore, cache FeatureCache, publisher Publisher, impute bool) *Service {
	return &Service{
		assembler:    assembler,
		observations: observations,
		cache:        cache,
		publisher:    publisher,
		impute:       impute,
	}
}

// Assemble runs feature engineering without persisting anything. impute is
// combined with the service-wide switch.
func (s *Service) Assemble(p features.PatientData, impute bool) features.Result {
	res := s.assembler.Assemble(p, impute && s.impute)
	metrics.ObserveAssembly(res.Success, string(res.Kind), len(res.MissingFeatures), len(res.ImputedFeatures))
	return res
}

// Engineer assembles features for the encounter and stores the snapshot. An
// assembly failure is returned as the result's *features.Error.
func (s *Service) Engineer(ctx context.Context, encounterID string, p features.PatientData, impute bool) (features.Result, *storage.ObservationSet, error) {
	res := s.Assemble(p, impute)
	if !res.Success {
		return res, nil, res.Err
	}

	set := storage.NewObservationSet(encounterID, patientKey(p.PatientID), storage.SourceEngineered, res.Features, res.ImputedFeatures)
	set.ValidationMessage = res.ValidationMessage
	set.RecordedByName = "feature-pipeline"
	if err := s.observations.Create(ctx, set); err != nil {
		return res, nil, err
	}
	s.afterStore(ctx, set)
	return res, set, nil
}

// RecordManual stores a clinician-entered set after checking names and
// entry bounds.
func (s *Service) RecordManual(ctx context.Context, encounterID string, req models.ManualObservationRequest) (*storage.ObservationSet, error) {
	if strings.TrimSpace(req.RecordedByName) == "" {
		return nil, ErrRecorderRequired
	}
	rec, err := features.ParseRecord(req.Features)
	if err != nil {
		return nil, err
	}
	if fieldErrs := features.ValidateEntry(rec); len(fieldErrs) > 0 {
		return nil, &EntryError{Fields: fieldErrs}
	}

	set := storage.NewObservationSet(encounterID, "", storage.SourceManual, rec, nil)
	set.RecordedByName = strings.TrimSpace(req.RecordedByName)
	if req.RecordedAt != nil {
		set.RecordedAt = req.RecordedAt.UTC()
	}
	if err := s.observations.Create(ctx, set); err != nil {
		return nil, err
	}
	s.afterStore(ctx, set)
	return set, nil
}

// Latest serves from the cache and falls back to the store, refilling the cache.
func (s *Service) Latest(ctx context.Context, encounterID string) (storage.CachedFeatures, error) {
	if s.cache != nil {
		entry, ok, err := s.cache.Get(ctx, encounterID)
		if err != nil {
			logger.Get().WithError(err).WithField("encounter_id", encounterID).Warn("feature cache read failed")
		} else if ok {
			return entry, nil
		}
	}
	set, err := s.observations.Latest(ctx, encounterID)
	if err != nil {
		return storage.CachedFeatures{}, err
	}
	entry := storage.FromObservationSet(set)
	s.cachePut(ctx, entry)
	return entry, nil
}

func (s *Service) afterStore(ctx context.Context, set *storage.ObservationSet) {
	entry := storage.FromObservationSet(*set)
	s.cachePut(ctx, entry)

	logger.WithFields(logrus.Fields{
		"encounter_id":       set.EncounterID,
		"observation_set_id": set.ID,
		"source":             set.Source,
		"missing":            len(entry.Missing),
		"imputed":            len(entry.Imputed),
	}).Info("observation set stored")

	if s.publisher == nil {
		return
	}
	data := map[string]interface{}{
		"encounter_id":       set.EncounterID,
		"observation_set_id": set.ID.String(),
		"source":             set.Source,
		"features":           entry.Features,
		"missing_features":   entry.Missing,
		"imputed_features":   entry.Imputed,
		"recorded_at":        set.RecordedAt.Format(time.RFC3339),
	}
	if err := s.publisher.PublishEvent(ctx, set.EncounterID, models.EventFeaturesAssembled, eventSource, data); err != nil {
		logger.Get().WithError(err).WithField("encounter_id", set.EncounterID).Warn("features-assembled event not published")
	}
}

func (s *Service) cachePut(ctx context.Context, entry storage.CachedFeatures) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, entry); err != nil {
		logger.Get().WithError(err).WithField("encounter_id", entry.EncounterID).Warn("feature cache write failed")
	}
}

func patientKey(id interface{}) string {
	if id == nil {
		return ""
	}
	return fmt.Sprint(id)
}
