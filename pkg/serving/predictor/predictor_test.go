package predictor

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/synaptica-ai/icu-risk/pkg/features"
)

func writeArtifact(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write artifact: %v", err)
	}
}

const zeroModel = `{"model":{"type":"logistic","algorithm":"logreg","version":"v1",
"feature_names":["HR_mean","age"],"weights":{"bias":0,"coefficients":[0,0]}}}`

func TestPredictUsesArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeArtifact(t, path, zeroModel)

	p := NewPredictor(path, "fallback")
	prob, err := p.Predict(features.Record{features.HRMean: 90, features.Age: 70})
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if prob != 0.5 {
		t.Fatalf("expected 0.5, got %v", prob)
	}
	if p.Version() != "v1" {
		t.Fatalf("expected artifact version, got %q", p.Version())
	}
}

func TestPredictMissingFeature(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeArtifact(t, path, zeroModel)

	_, err := NewPredictor(path, "").Predict(features.Record{features.HRMean: 90})
	if !errors.Is(err, ErrMissingFeatures) {
		t.Fatalf("expected ErrMissingFeatures, got %v", err)
	}
}

func TestPredictReloadsOnChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	writeArtifact(t, path, zeroModel)
	p := NewPredictor(path, "")
	rec := features.Record{features.HRMean: 90, features.Age: 70}
	if _, err := p.Predict(rec); err != nil {
		t.Fatalf("Predict: %v", err)
	}

	writeArtifact(t, path, `{"model":{"type":"logistic","version":"v2","feature_names":["HR_mean"],
"weights":{"bias":5,"coefficients":[0]}}}`)
	later := time.Now().Add(time.Minute)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatalf("chtimes: %v", err)
	}
	prob, err := p.Predict(rec)
	if err != nil {
		t.Fatalf("Predict: %v", err)
	}
	if prob < 0.99 || p.Version() != "v2" {
		t.Fatalf("artifact not reloaded: p=%v version=%s", prob, p.Version())
	}
}

func TestPredictRejectsBadArtifacts(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"unknown.json": `{"model":{"feature_names":["heart_rate"],"weights":{"coefficients":[1]}}}`,
		"width.json":   `{"model":{"feature_names":["HR_mean"],"weights":{"coefficients":[1,2]}}}`,
		"empty.json":   `{"model":{"feature_names":[]}}`,
		"garbage.json": `not json`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		writeArtifact(t, path, body)
		if _, err := NewPredictor(path, "").Predict(features.Record{features.HRMean: 1}); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
	if _, err := NewPredictor(filepath.Join(dir, "absent.json"), "").Predict(features.Record{}); err == nil {
		t.Fatal("expected error for missing artifact")
	}
}
