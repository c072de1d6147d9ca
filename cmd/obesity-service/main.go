package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"github.com/synaptica-ai/obesity-check/pkg/common/config"
	"github.com/synaptica-ai/obesity-check/pkg/common/database"
	"github.com/synaptica-ai/obesity-check/pkg/common/kafka"
	"github.com/synaptica-ai/obesity-check/pkg/common/logger"
	"github.com/synaptica-ai/obesity-check/pkg/gateway/middleware"
	"github.com/synaptica-ai/obesity-check/pkg/observability/metrics"
	"github.com/synaptica-ai/obesity-check/pkg/questionnaire"
	"github.com/synaptica-ai/obesity-check/pkg/screening"
	"github.com/synaptica-ai/obesity-check/pkg/serving"
	"github.com/synaptica-ai/obesity-check/pkg/storage"
	"gorm.io/gorm"
)

func main() {
	logger.Init()
	cfg := config.Load()

	bundle, err := serving.LoadBundle(cfg.ModelPath, cfg.EncodersPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load model artifacts")
	}
	catalog, err := questionnaire.LoadCatalog(cfg.CatalogPath)
	if err != nil {
		logger.Log.WithError(err).Fatal("Failed to load questionnaire catalog")
	}

	logger.WithFields(logrus.Fields{
		"model_version": bundle.Version(),
		"algorithm":     bundle.Model.Algorithm(),
		"trees":         bundle.Model.TreeCount(),
	}).Info("Model artifacts loaded")

	var opts []screening.Option

	if cfg.PredictionCacheEnabled {
		client, err := database.OpenRedis(context.Background(), cfg)
		if err != nil {
			logger.Log.WithError(err).Warn("Prediction cache disabled")
		} else {
			defer client.Close()
			opts = append(opts, screening.WithCache(
				storage.NewPredictionCache(client, cfg.PredictionCachePrefix, cfg.PredictionCacheTTL),
			))
		}
	}

	if len(cfg.KafkaBrokers) > 0 {
		producer := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer producer.Close()
		logger.WithFields(logrus.Fields{
			"brokers": cfg.KafkaBrokers,
			"topic":   producer.Topic(),
		}).Info("Assessment events enabled")
		opts = append(opts, screening.WithEvents(producer))
	}

	if cfg.ReleaseRegistryEnabled {
		db, err := database.OpenPostgres(cfg)
		if err != nil {
			logger.Log.WithError(err).Warn("Release registry unavailable")
		} else {
			defer database.ClosePostgres(db)
			recordRelease(db, bundle)
		}
	}

	validator := screening.NewValidator(screening.WithStrictNumeric(cfg.StrictNumericValidation))
	service := screening.NewService(bundle, validator, opts...)

	router := mux.NewRouter()
	router.Use(middleware.Logging)
	router.Use(middleware.Recovery)
	router.Use(middleware.CORS)
	router.Use(middleware.BodyLimit(cfg.MaxRequestBody))

	router.HandleFunc("/health", healthCheck(bundle)).Methods(http.MethodGet)
	router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	apiRouter := router.PathPrefix("/api/v1").Subrouter()
	apiRouter.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	screening.NewHTTPHandler(service, catalog, cfg.MaxRequestBody).Register(apiRouter)

	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.ServerHost, cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.WithFields(logrus.Fields{
			"host": cfg.ServerHost,
			"port": cfg.ServerPort,
		}).Info("Obesity check service started")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Info("Shutting down obesity check service...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Log.WithError(err).Error("Server forced to shutdown")
	}

	logger.Log.Info("Obesity check service stopped")
}

func recordRelease(db *gorm.DB, bundle *serving.Bundle) {
	repo := serving.NewRepository(db)
	if err := repo.AutoMigrate(); err != nil {
		logger.Log.WithError(err).Warn("Failed to migrate release registry")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := repo.RecordRelease(ctx, serving.NewRelease(bundle)); err != nil {
		logger.Log.WithError(err).Warn("Failed to record model release")
	}
}

func healthCheck(bundle *serving.Bundle) http.HandlerFunc {
	body := fmt.Sprintf(`{"status":"healthy","model_version":%q}`, bundle.Version())
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(body))
	}
}
