package storage

import (
	"testing"

	"github.com/synaptica-ai/icu-risk/pkg/features"
)

func TestNewObservationSetSnapshotsRecord(t *testing.T) {
	rec := features.Record{features.HRMean: 105, features.Age: 65}
	set := NewObservationSet("enc-1", "P-1", SourceEngineered, rec, []features.Name{features.GCSMax})

	if set.EncounterID != "enc-1" || set.Source != SourceEngineered {
		t.Fatalf("unexpected set %+v", set)
	}
	if len(set.Missing()) != 49 {
		t.Fatalf("expected 49 missing, got %d", len(set.Missing()))
	}
	if imputed := set.Imputed(); len(imputed) != 1 || imputed[0] != "GCS_max" {
		t.Fatalf("unexpected imputed list %v", imputed)
	}

	back, err := set.Record()
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if back[features.HRMean] != 105 || back[features.Age] != 65 || len(back) != 2 {
		t.Fatalf("round trip changed record: %v", back)
	}
}

func TestObservationSetRejectsUnknownStoredKeys(t *testing.T) {
	set := ObservationSet{Features: map[string]interface{}{"HR_mean": 80.0, "heart_rate": 80.0}}
	if _, err := set.Record(); !features.IsInputError(err) {
		t.Fatalf("expected input error, got %v", err)
	}
}

func TestDecodeNamesTolerance(t *testing.T) {
	if got := decodeNames(nil); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
	if got := decodeNames([]byte("not json")); len(got) != 0 {
		t.Fatalf("expected empty list, got %v", got)
	}
}

func TestFeatureCacheKeyAndEntry(t *testing.T) {
	cache := NewFeatureCache(nil, "", 0)
	if got := cache.key("enc-9"); got != "icu-features:encounter:enc-9:latest" {
		t.Fatalf("unexpected key %q", got)
	}

	set := NewObservationSet("enc-9", "P-9", SourceManual, features.Record{features.HRMax: 130}, nil)
	entry := FromObservationSet(*set)
	if entry.Features["HR_max"] != 130 || entry.ObservationSetID != set.ID.String() {
		t.Fatalf("unexpected cache entry %+v", entry)
	}
	if len(entry.Imputed) != 0 || len(entry.Missing) != 50 {
		t.Fatalf("unexpected lists %v %v", entry.Imputed, len(entry.Missing))
	}
}
