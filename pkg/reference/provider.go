package reference

import (
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/features"
)

// Provider loads the reference dataset once, on first use, and shares it
// read-only afterwards. A failed load is remembered: imputation then treats
// the dataset as unavailable instead of retrying on every request.
type Provider struct {
	path string

	once sync.Once
	ds   *Dataset
	err  error
}

// NewProvider does not touch the file system. An empty path yields a provider
// that never has a dataset.
func NewProvider(path string) *Provider {
	return &Provider{path: path}
}

// FromDataset wraps an already loaded dataset.
func FromDataset(ds *Dataset) *Provider {
	p := &Provider{ds: ds}
	p.once.Do(func() {})
	return p
}

func (p *Provider) load() {
	p.once.Do(func() {
		if p.path == "" {
			return
		}
		ds, err := Load(p.path)
		if err != nil {
			p.err = err
			logger.WithFields(logrus.Fields{
				"path":  p.path,
				"error": err.Error(),
			}).Warn("reference dataset unavailable, imputation disabled")
			return
		}
		p.ds = ds
		logger.WithFields(logrus.Fields{
			"path":    p.path,
			"rows":    ds.Rows(),
			"columns": ds.Columns(),
		}).Info("reference dataset loaded")
	})
}

// Dataset satisfies features.ReferenceSource.
func (p *Provider) Dataset() (features.ReferenceDataset, bool) {
	p.load()
	if p.ds == nil {
		return nil, false
	}
	return p.ds, true
}

// Err reports the load failure, if any, after the first Dataset call.
func (p *Provider) Err() error {
	p.load()
	return p.err
}
