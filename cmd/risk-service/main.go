package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/icu-risk/pkg/api"
	"github.com/synaptica-ai/icu-risk/pkg/api/middleware"
	"github.com/synaptica-ai/icu-risk/pkg/common/config"
	"github.com/synaptica-ai/icu-risk/pkg/common/database"
	"github.com/synaptica-ai/icu-risk/pkg/common/kafka"
	"github.com/synaptica-ai/icu-risk/pkg/common/logger"
	"github.com/synaptica-ai/icu-risk/pkg/drivers"
	"github.com/synaptica-ai/icu-risk/pkg/features"
	"github.com/synaptica-ai/icu-risk/pkg/pipeline"
	"github.com/synaptica-ai/icu-risk/pkg/reference"
	"github.com/synaptica-ai/icu-risk/pkg/risk"
	"github.com/synaptica-ai/icu-risk/pkg/serving/predictor"
	"github.com/synaptica-ai/icu-risk/pkg/storage"
)

func main() {
	logger.Init()
	cfg := config.Load()

	db, err := database.GetPostgres()
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to connect to database")
	}
	observations := storage.NewObservationRepository(db)
	if err := observations.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate observation sets")
	}
	assessments := risk.NewRepository(db)
	if err := assessments.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Fatal("Failed to migrate risk assessments")
	}

	cache := storage.NewFeatureCache(database.GetRedis(), cfg.FeatureCachePrefix, cfg.FeatureCacheTTL)

	table, err := drivers.LoadTable(cfg.ClinicalRangesPath)
	if err != nil {
		logger.Log.WithError(err).WithField("path", cfg.ClinicalRangesPath).Fatal("Failed to load clinical ranges")
	}
	if cfg.DriverExtremeThreshold > 0 {
		table.Default = cfg.DriverExtremeThreshold
	}
	if !cfg.DriverIncludeDemographics {
		table = table.WithoutDemographics()
	}

	bander, err := risk.NewBander(cfg.RiskBandLow, cfg.RiskBandMedium)
	if err != nil {
		logger.Log.WithError(err).Fatal("Invalid risk band configuration")
	}

	provider := reference.NewProvider(cfg.ReferenceDatasetPath)
	featuresProducer := kafka.NewProducer(cfg.FeaturesTopic)
	defer featuresProducer.Close()

	pipe := pipeline.NewService(features.NewAssembler(provider), observations, cache, featuresProducer, cfg.UseMedianImputation)
	riskService := risk.NewService(observations, assessments,
		predictor.NewPredictor(cfg.ModelArtifactPath, cfg.ModelVersion), bander, drivers.NewRanker(table))

	router := api.NewRouter(
		api.NewHealthHandler(cfg.ModelVersion),
		api.NewFeatureHandler(pipe),
		api.NewAssessmentHandler(riskService),
	)
	var handler http.Handler = router
	handler = middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst)(handler)
	handler = middleware.BodyLimit(cfg.MaxRequestBody)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Recovery(handler)
	handler = middleware.Logging(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	ctx, stop := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	if cfg.KafkaConsumerEnabled {
		dlq := kafka.NewProducer(cfg.DLQTopic)
		defer dlq.Close()
		consumer := kafka.NewConsumer(cfg.MeasurementsTopic, cfg.KafkaGroupID)
		events := pipeline.NewEventHandler(pipe, dlq)

		wg.Add(1)
		go func() {
			defer wg.Done()
			logger.WithField("topic", cfg.MeasurementsTopic).Info("Measurement consumer started")
			if err := consumer.Consume(ctx, events.Handle); err != nil && !errors.Is(err, context.Canceled) {
				logger.Log.WithError(err).Error("Measurement consumer stopped")
			}
			consumer.Close()
		}()
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"host":          cfg.ServerHost,
			"port":          cfg.ServerPort,
			"model_version": cfg.ModelVersion,
		}).Info("ICU risk service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down ICU risk service...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}
	wg.Wait()

	if err := database.CloseRedis(); err != nil {
		logger.Log.WithError(err).Warn("Failed to close redis")
	}
	if err := database.ClosePostgres(); err != nil {
		logger.Log.WithError(err).Warn("Failed to close postgres")
	}
	logger.Log.Info("ICU risk service stopped")
}
