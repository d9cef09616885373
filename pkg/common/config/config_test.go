package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	if cfg.RiskBandLow != 0.10 || cfg.RiskBandMedium != 0.30 {
		t.Fatalf("unexpected band defaults: %v %v", cfg.RiskBandLow, cfg.RiskBandMedium)
	}
	if cfg.DriverExtremeThreshold != 0.50 {
		t.Fatalf("expected extreme threshold 0.50, got %v", cfg.DriverExtremeThreshold)
	}
	if !cfg.UseMedianImputation {
		t.Fatal("expected imputation enabled by default")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("RISK_BAND_MEDIUM", "0.45")
	t.Setenv("USE_MEDIAN_IMPUTATION", "false")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("FEATURE_CACHE_TTL", "90s")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg := Load()
	if cfg.RiskBandMedium != 0.45 {
		t.Fatalf("expected 0.45, got %v", cfg.RiskBandMedium)
	}
	if cfg.UseMedianImputation {
		t.Fatal("expected imputation disabled")
	}
	if len(cfg.KafkaBrokers) != 2 || cfg.KafkaBrokers[1] != "k2:9092" {
		t.Fatalf("unexpected brokers: %v", cfg.KafkaBrokers)
	}
	if cfg.FeatureCacheTTL != 90*time.Second {
		t.Fatalf("unexpected ttl: %v", cfg.FeatureCacheTTL)
	}
	if cfg.RateLimitRPS != 50 {
		t.Fatalf("invalid int should fall back to default, got %d", cfg.RateLimitRPS)
	}
}
