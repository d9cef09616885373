package predictor

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/features"
	"github.com/synaptica-ai/icu-risk/pkg/ml/linear"
)

var ErrMissingFeatures = errors.New("feature record is incomplete")

type Artifact struct {
	Model struct {
		Type         string         `json:"type"`
		Algorithm    string         `json:"algorithm"`
		Version      string         `json:"version"`
		FeatureNames []string       `json:"feature_names"`
		Weights      linear.Weights `json:"weights"`
	} `json:"model"`
}

// Predictor scores a feature record with the artifact at path. The artifact is
// re-read whenever the file's modification time changes, so a new model can
// be dropped in place without a restart.
type Predictor struct {
	path    string
	version string

	mu     sync.RWMutex
	cached *cachedArtifact
}

type cachedArtifact struct {
	artifact Artifact
	names    []features.Name
	modTime  int64
}

func NewPredictor(path, version string) *Predictor {
	return &Predictor{path: path, version: version}
}

// Predict returns the 180-day mortality probability. Every feature the
// artifact names must be present in rec.
func (p *Predictor) Predict(rec features.Record) (float64, error) {
	cached, err := p.load()
	if err != nil {
		return 0, err
	}
	sample := make([]float64, len(cached.names))
	var missing []string
	for idx, name := range cached.names {
		value, ok := rec.Get(name)
		if !ok {
			missing = append(missing, string(name))
			continue
		}
		sample[idx] = value
	}
	if len(missing) > 0 {
		return 0, fmt.Errorf("%w: %v", ErrMissingFeatures, missing)
	}
	return linear.Predict(cached.artifact.Model.Weights, sample), nil
}

// Version is the artifact's own version when it declares one.
func (p *Predictor) Version() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.cached != nil && p.cached.artifact.Model.Version != "" {
		return p.cached.artifact.Model.Version
	}
	return p.version
}

func (p *Predictor) load() (*cachedArtifact, error) {
	path := filepath.Clean(p.path)
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("model artifact: %w", err)
	}
	mod := info.ModTime().UnixNano()

	p.mu.RLock()
	cached := p.cached
	p.mu.RUnlock()
	if cached != nil && cached.modTime == mod {
		return cached, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact Artifact
	if err := json.Unmarshal(content, &artifact); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	if len(artifact.Model.FeatureNames) == 0 {
		return nil, fmt.Errorf("artifact missing feature names")
	}
	names := make([]features.Name, len(artifact.Model.FeatureNames))
	for i, raw := range artifact.Model.FeatureNames {
		name, ok := features.ParseName(raw)
		if !ok {
			return nil, fmt.Errorf("artifact uses unknown feature %q", raw)
		}
		names[i] = name
	}
	if err := artifact.Model.Weights.Validate(len(names)); err != nil {
		return nil, fmt.Errorf("artifact weights: %w", err)
	}

	next := &cachedArtifact{artifact: artifact, names: names, modTime: mod}
	p.mu.Lock()
	p.cached = next
	p.mu.Unlock()

	logger.Get().WithField("path", path).WithField("features", len(names)).Info("model artifact loaded")
	return next, nil
}
