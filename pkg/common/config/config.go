package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// Server
	ServerPort     string
	ServerHost     string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	MaxRequestBody int64
	RateLimitRPS   int
	RateLimitBurst int

	// Database
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	// Redis
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	FeatureCacheTTL    time.Duration
	FeatureCachePrefix string

	// Kafka
	KafkaBrokers         []string
	KafkaGroupID         string
	KafkaConsumerEnabled bool
	MeasurementsTopic    string
	FeaturesTopic        string
	DLQTopic             string

	// Reference population used for median imputation
	ReferenceDatasetPath string
	UseMedianImputation  bool

	// Model
	ModelArtifactPath string
	ModelVersion      string

	// Risk bands
	RiskBandLow    float64
	RiskBandMedium float64

	// Clinical drivers
	ClinicalRangesPath        string
	DriverExtremeThreshold    float64
	DriverIncludeDemographics bool
}

func Load() *Config {
	return &Config{
		ServerPort:     getEnv("SERVER_PORT", "8090"),
		ServerHost:     getEnv("SERVER_HOST", "0.0.0.0"),
		ReadTimeout:    getDuration("READ_TIMEOUT", 30*time.Second),
		WriteTimeout:   getDuration("WRITE_TIMEOUT", 30*time.Second),
		MaxRequestBody: int64(getIntEnv("MAX_REQUEST_BODY_BYTES", 4*1024*1024)),
		RateLimitRPS:   getIntEnv("RATE_LIMIT_RPS", 50),
		RateLimitBurst: getIntEnv("RATE_LIMIT_BURST", 100),

		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "icurisk"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "icurisk123"),
		PostgresDB:       getEnv("POSTGRES_DB", "icurisk"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		RedisHost:          getEnv("REDIS_HOST", "localhost"),
		RedisPort:          getEnv("REDIS_PORT", "6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            getIntEnv("REDIS_DB", 0),
		FeatureCacheTTL:    getDuration("FEATURE_CACHE_TTL", 10*time.Minute),
		FeatureCachePrefix: getEnv("FEATURE_CACHE_PREFIX", "icu-features"),

		KafkaBrokers:         getStringSliceEnv("KAFKA_BROKERS", []string{"localhost:9092"}),
		KafkaGroupID:         getEnv("KAFKA_GROUP_ID", "icu-risk"),
		KafkaConsumerEnabled: getBoolEnv("KAFKA_CONSUMER_ENABLED", true),
		MeasurementsTopic:    getEnv("MEASUREMENTS_TOPIC", "icu-measurement-batches"),
		FeaturesTopic:        getEnv("FEATURES_TOPIC", "icu-features-assembled"),
		DLQTopic:             getEnv("DLQ_TOPIC", "icu-measurement-batches-dlq"),

		ReferenceDatasetPath: getEnv("REFERENCE_DATASET_PATH", ""),
		UseMedianImputation:  getBoolEnv("USE_MEDIAN_IMPUTATION", true),

		ModelArtifactPath: getEnv("MODEL_ARTIFACT_PATH", "./artifacts/mortality_180d_latest.json"),
		ModelVersion:      getEnv("MODEL_VERSION", "2025-12-31-xgb-180d"),

		RiskBandLow:    getFloatEnv("RISK_BAND_LOW", 0.10),
		RiskBandMedium: getFloatEnv("RISK_BAND_MEDIUM", 0.30),

		ClinicalRangesPath:        getEnv("CLINICAL_RANGES_PATH", ""),
		DriverExtremeThreshold:    getFloatEnv("DRIVER_EXTREME_THRESHOLD", 0.50),
		DriverIncludeDemographics: getBoolEnv("DRIVER_INCLUDE_DEMOGRAPHICS", true),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getStringSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
