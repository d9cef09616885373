package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
)

// CachedFeatures is the hot copy of an encounter's latest observation set.
type CachedFeatures struct {
	EncounterID      string             `json:"encounter_id"`
	ObservationSetID string             `json:"observation_set_id"`
	Features         map[string]float64 `json:"features"`
	Missing          []string           `json:"missing_features"`
	Imputed          []string           `json:"imputed_features"`
	Source           string             `json:"source"`
	RecordedAt       time.Time          `json:"recorded_at"`
}

// FeatureCache keeps the latest feature record per encounter in Redis so the
// bedside view does not hit Postgres on every refresh.
type FeatureCache struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

func NewFeatureCache(client redis.Cmdable, prefix string, ttl time.Duration) *FeatureCache {
	if prefix == "" {
		prefix = "icu-features"
	}
	return &FeatureCache{client: client, prefix: prefix, ttl: ttl}
}

func (c *FeatureCache) key(encounterID string) string {
	return fmt.Sprintf("%s:encounter:%s:latest", c.prefix, encounterID)
}

func (c *FeatureCache) Put(ctx context.Context, entry CachedFeatures) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	key := c.key(entry.EncounterID)
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("cache features: %w", err)
	}
	logger.WithFields(logrus.Fields{
		"key":  key,
		"size": len(data),
	}).Debug("Cached features")
	return nil
}

// Get reports false without error on a cache miss.
func (c *FeatureCache) Get(ctx context.Context, encounterID string) (CachedFeatures, bool, error) {
	data, err := c.client.Get(ctx, c.key(encounterID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return CachedFeatures{}, false, nil
	}
	if err != nil {
		return CachedFeatures{}, false, err
	}
	var entry CachedFeatures
	if err := json.Unmarshal(data, &entry); err != nil {
		return CachedFeatures{}, false, fmt.Errorf("decode cached features: %w", err)
	}
	return entry, true, nil
}

func (c *FeatureCache) Invalidate(ctx context.Context, encounterID string) error {
	return c.client.Del(ctx, c.key(encounterID)).Err()
}

// FromObservationSet builds the cache entry for a stored set.
func FromObservationSet(set ObservationSet) CachedFeatures {
	values := make(map[string]float64, len(set.Features))
	if rec, err := set.Record(); err == nil {
		for name, v := range rec {
			values[string(name)] = v
		}
	}
	return CachedFeatures{
		EncounterID:      set.EncounterID,
		ObservationSetID: set.ID.String(),
		Features:         values,
		Missing:          set.Missing(),
		Imputed:          set.Imputed(),
		Source:           set.Source,
		RecordedAt:       set.RecordedAt,
	}
}
