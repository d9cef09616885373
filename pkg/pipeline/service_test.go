package pipeline

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/synaptica-ai/icu-risk/pkg/common/models"
	"github.com/synaptica-ai/icu-risk/pkg/features"
	"github.com/synaptica-ai/icu-risk/pkg/storage"
)

type memStore struct {
	sets    []*storage.ObservationSet
	failing bool
}

func (m *memStore) Create(ctx context.Context, set *storage.ObservationSet) error {
	if m.failing {
		return errors.New("database unavailable")
	}
	m.sets = append(m.sets, set)
	return nil
}

func (m *memStore) Latest(ctx context.Context, encounterID string) (storage.ObservationSet, error) {
	var found []*storage.ObservationSet
	for _, s := range m.sets {
		if s.EncounterID == encounterID {
			found = append(found, s)
		}
	}
	if len(found) == 0 {
		return storage.ObservationSet{}, storage.ErrObservationSetNotFound
	}
	sort.SliceStable(found, func(i, j int) bool { return found[i].RecordedAt.After(found[j].RecordedAt) })
	return *found[0], nil
}

type memCache struct {
	entries map[string]storage.CachedFeatures
	gets    int
}

func newMemCache() *memCache {
	return &memCache{entries: map[string]storage.CachedFeatures{}}
}

func (c *memCache) Put(ctx context.Context, entry storage.CachedFeatures) error {
	c.entries[entry.EncounterID] = entry
	return nil
}

func (c *memCache) Get(ctx context.Context, encounterID string) (storage.CachedFeatures, bool, error) {
	c.gets++
	e, ok := c.entries[encounterID]
	return e, ok, nil
}

type published struct {
	key       string
	eventType string
	data      map[string]interface{}
}

type memPublisher struct {
	events []published
}

func (p *memPublisher) PublishEvent(ctx context.Context, key, eventType, source string, data map[string]interface{}) error {
	p.events = append(p.events, published{key: key, eventType: eventType, data: data})
	return nil
}

func hoursAfter(h int) string {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return base.Add(time.Duration(h) * time.Hour).Format("2006-01-02T15:04:05")
}

func patientPayload() map[string]interface{} {
	measurements := []interface{}{}
	for i, hr := range []float64{80, 90, 100, 110, 120, 130} {
		measurements = append(measurements, map[string]interface{}{
			"timestamp":  hoursAfter(i * 8),
			"heart_rate": hr,
		})
	}
	measurements = append(measurements,
		map[string]interface{}{"timestamp": hoursAfter(4), "lactate": 1.5},
		map[string]interface{}{"timestamp": hoursAfter(44), "lactate": 2.5},
	)
	return map[string]interface{}{
		"patient_id":                "p-17",
		"admission_time":            hoursAfter(0),
		"current_time":              hoursAfter(48),
		"age":                       65.0,
		"age_adj_comorbidity_score": 3.0,
		"measurements":              measurements,
	}
}

func patientData(t *testing.T) features.PatientData {
	t.Helper()
	admission := hoursAfter(0)
	current := hoursAfter(48)
	raw := patientPayload()
	var ms []map[string]interface{}
	for _, m := range raw["measurements"].([]interface{}) {
		ms = append(ms, m.(map[string]interface{}))
	}
	return features.PatientData{
		PatientID:              "p-17",
		AdmissionTime:          &admission,
		CurrentTime:            &current,
		Age:                    65.0,
		AgeAdjComorbidityScore: 3.0,
		Measurements:           ms,
	}
}

func newTestService(store *memStore, cache FeatureCache, pub Publisher) *Service {
	return NewService(features.NewAssembler(nil), store, cache, pub, true)
}

func TestEngineerStoresCachesAndPublishes(t *testing.T) {
	store, cache, pub := &memStore{}, newMemCache(), &memPublisher{}
	svc := newTestService(store, cache, pub)

	res, set, err := svc.Engineer(context.Background(), "enc-1", patientData(t), true)
	if err != nil {
		t.Fatalf("Engineer returned error: %v", err)
	}
	if !res.Success || set == nil {
		t.Fatalf("expected success with a stored set, got %+v", res)
	}
	if set.Source != storage.SourceEngineered || set.PatientID != "p-17" {
		t.Fatalf("unexpected set metadata: %+v", set)
	}
	if set.ValidationMessage != res.ValidationMessage {
		t.Fatalf("validation message not stored: %q", set.ValidationMessage)
	}
	if len(store.sets) != 1 {
		t.Fatalf("expected one stored set, got %d", len(store.sets))
	}
	cached, ok := cache.entries["enc-1"]
	if !ok || cached.ObservationSetID != set.ID.String() {
		t.Fatalf("expected cache entry for the new set, got %+v", cached)
	}
	if cached.Features["HR_mean"] != 105 {
		t.Fatalf("expected HR_mean 105 in cache, got %v", cached.Features["HR_mean"])
	}
	if len(pub.events) != 1 || pub.events[0].eventType != models.EventFeaturesAssembled || pub.events[0].key != "enc-1" {
		t.Fatalf("unexpected published events: %+v", pub.events)
	}
}

func TestEngineerAssemblyFailureStoresNothing(t *testing.T) {
	store, cache, pub := &memStore{}, newMemCache(), &memPublisher{}
	svc := newTestService(store, cache, pub)

	p := patientData(t)
	early := hoursAfter(10)
	p.CurrentTime = &early

	res, set, err := svc.Engineer(context.Background(), "enc-1", p, true)
	var ferr *features.Error
	if !errors.As(err, &ferr) || ferr.Kind != features.KindCoverage {
		t.Fatalf("expected coverage error, got %v", err)
	}
	if res.Success || set != nil {
		t.Fatal("expected failed result without a set")
	}
	if len(store.sets) != 0 || len(cache.entries) != 0 || len(pub.events) != 0 {
		t.Fatal("failure must not touch store, cache or publisher")
	}
}

func TestEngineerStoreFailure(t *testing.T) {
	store := &memStore{failing: true}
	svc := newTestService(store, newMemCache(), nil)
	_, _, err := svc.Engineer(context.Background(), "enc-1", patientData(t), false)
	if err == nil {
		t.Fatal("expected store error")
	}
	var ferr *features.Error
	if errors.As(err, &ferr) {
		t.Fatalf("store errors must not look like assembly errors: %v", err)
	}
}

func TestRecordManual(t *testing.T) {
	store, cache := &memStore{}, newMemCache()
	svc := newTestService(store, cache, nil)

	at := time.Date(2025, 1, 3, 9, 30, 0, 0, time.UTC)
	set, err := svc.RecordManual(context.Background(), "enc-2", models.ManualObservationRequest{
		Features:       map[string]interface{}{"HR_mean": 92.0, "Lactate_max": 3.1, "age": 70.0},
		RecordedByName: "  Dr. Osei ",
		RecordedAt:     &at,
	})
	if err != nil {
		t.Fatalf("RecordManual returned error: %v", err)
	}
	if set.Source != storage.SourceManual || set.RecordedByName != "Dr. Osei" || !set.RecordedAt.Equal(at) {
		t.Fatalf("unexpected set: %+v", set)
	}
	if len(set.Missing()) != len(features.ExpectedNames())-3 {
		t.Fatalf("expected %d missing, got %d", len(features.ExpectedNames())-3, len(set.Missing()))
	}
	if _, ok := cache.entries["enc-2"]; !ok {
		t.Fatal("expected manual set to be cached")
	}
}

func TestRecordManualRejects(t *testing.T) {
	svc := newTestService(&memStore{}, newMemCache(), nil)
	ctx := context.Background()

	if _, err := svc.RecordManual(ctx, "e", models.ManualObservationRequest{
		Features: map[string]interface{}{"HR_mean": 80.0},
	}); !errors.Is(err, ErrRecorderRequired) {
		t.Fatalf("expected ErrRecorderRequired, got %v", err)
	}

	if _, err := svc.RecordManual(ctx, "e", models.ManualObservationRequest{
		Features:       map[string]interface{}{"HR_meen": 80.0},
		RecordedByName: "nurse",
	}); err == nil {
		t.Fatal("expected unknown feature error")
	}

	_, err := svc.RecordManual(ctx, "e", models.ManualObservationRequest{
		Features:       map[string]interface{}{"HR_mean": 170.0, "age": 17.0},
		RecordedByName: "nurse",
	})
	var entryErr *EntryError
	if !errors.As(err, &entryErr) {
		t.Fatalf("expected EntryError, got %v", err)
	}
	if len(entryErr.Fields) != 2 || entryErr.Fields[0].Feature != features.Age {
		t.Fatalf("unexpected field errors: %+v", entryErr.Fields)
	}
}

func TestLatestPrefersCacheThenRefills(t *testing.T) {
	store, cache := &memStore{}, newMemCache()
	svc := newTestService(store, cache, nil)
	ctx := context.Background()

	if _, err := svc.Latest(ctx, "missing"); !errors.Is(err, storage.ErrObservationSetNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	rec := features.Record{features.HRMean: 88}
	set := storage.NewObservationSet("enc-3", "", storage.SourceManual, rec, nil)
	store.sets = append(store.sets, set)

	got, err := svc.Latest(ctx, "enc-3")
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if got.ObservationSetID != set.ID.String() {
		t.Fatalf("unexpected entry %+v", got)
	}
	if _, ok := cache.entries["enc-3"]; !ok {
		t.Fatal("expected cache refill after store read")
	}

	cache.entries["enc-3"] = storage.CachedFeatures{EncounterID: "enc-3", ObservationSetID: "from-cache"}
	got, err = svc.Latest(ctx, "enc-3")
	if err != nil || got.ObservationSetID != "from-cache" {
		t.Fatalf("expected cached entry, got %+v %v", got, err)
	}
}

func TestLatestWithoutCache(t *testing.T) {
	store := &memStore{}
	svc := NewService(features.NewAssembler(nil), store, nil, nil, true)
	store.sets = append(store.sets, storage.NewObservationSet("enc-4", "", storage.SourceManual, features.Record{features.GCSMax: 15}, nil))
	got, err := svc.Latest(context.Background(), "enc-4")
	if err != nil {
		t.Fatalf("Latest returned error: %v", err)
	}
	if got.Features["GCS_max"] != 15 {
		t.Fatalf("unexpected features %v", got.Features)
	}
}

func TestEntryErrorMessage(t *testing.T) {
	e := &EntryError{Fields: []features.FieldError{{Feature: features.Age}, {Feature: features.HRMean}}}
	if got := e.Error(); got != fmt.Sprintf("observation values out of range: %s, %s", features.Age, features.HRMean) {
		t.Fatalf("unexpected message %q", got)
	}
}
