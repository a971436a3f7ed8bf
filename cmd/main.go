package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/openpulse/openpulse-backend/internal/clients/openai"
	redisbus "github.com/openpulse/openpulse-backend/internal/clients/redis"
	"github.com/openpulse/openpulse-backend/internal/data/db"
	"github.com/openpulse/openpulse-backend/internal/data/repos"
	apphttp "github.com/openpulse/openpulse-backend/internal/http"
	"github.com/openpulse/openpulse-backend/internal/http/handlers"
	"github.com/openpulse/openpulse-backend/internal/observability"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
	"github.com/openpulse/openpulse-backend/internal/platform/envutil"
	"github.com/openpulse/openpulse-backend/internal/services"
	"github.com/openpulse/openpulse-backend/internal/sse"
)

func main() {
	// Logger
	logMode := envutil.String("LOG_MODE", "development")
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Tracing
	ctx := context.Background()
	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: "openpulse-backend",
		Environment: envutil.String("APP_ENV", "development"),
		Version:     envutil.String("APP_VERSION", "dev"),
	})
	if shutdownOTel != nil {
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTel(shutdownCtx); err != nil {
				log.Warn("OTel shutdown failed", "error", err)
			}
		}()
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	gdb := postgresService.DB()
	if err := db.AutoMigrateAll(gdb); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}

	// Repos
	log.Info("Setting up repos...")
	surveyRepo := repos.NewSurveyRepo(gdb, log)
	themeRepo := repos.NewSurveyThemeRepo(gdb, log)
	sessionRepo := repos.NewFeedbackSessionRepo(gdb, log)
	responseRepo := repos.NewSessionResponseRepo(gdb, log)
	signalRepo := repos.NewResponseSignalRepo(gdb, log)
	aggregateRepo := repos.NewAggregatedSignalRepo(gdb, log)
	insightRepo := repos.NewSessionInsightRepo(gdb, log)
	snapshotRepo := repos.NewSurveyAnalyticsSnapshotRepo(gdb, log)
	reportRepo := repos.NewNarrativeReportRepo(gdb, log)

	// SSE hub, optionally fed through Redis so every instance sees
	// pipeline events regardless of which one ran the pipeline.
	hub := sse.NewHub(log)
	var publisher services.EventPublisher = hub
	bus, err := redisbus.NewEventBus(log)
	if err != nil {
		log.Warn("Redis event bus unavailable; publishing to local hub only", "error", err)
	} else {
		defer bus.Close()
		if err := bus.StartForwarder(ctx, func(m sse.Message) {
			_ = hub.Publish(ctx, m)
		}); err != nil {
			log.Error("Redis forwarder failed to start", "error", err)
			os.Exit(1)
		}
		publisher = bus
	}

	// Oracle client
	aiClient, err := openai.NewClient(log)
	if err != nil {
		log.Error("Could not init oracle client", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services...")
	sessionAnalysis := services.NewSessionAnalysisService(gdb, log, sessionRepo, responseRepo, insightRepo, aiClient, publisher)
	clusterer := services.NewOracleClusterer(log, aiClient)
	signalAggregation := services.NewSignalAggregationService(gdb, log, surveyRepo, signalRepo, aggregateRepo, clusterer, publisher)
	surveySynthesis := services.NewSurveySynthesisService(gdb, log, surveyRepo, themeRepo, sessionRepo, responseRepo, insightRepo, snapshotRepo, aiClient, publisher)
	narrativeReport := services.NewNarrativeReportService(gdb, log, surveyRepo, responseRepo, insightRepo, snapshotRepo, reportRepo, aiClient, publisher)

	// Router
	router := apphttp.NewRouter(apphttp.RouterConfig{
		Log:             log,
		AnalysisHandler: handlers.NewAnalysisHandler(sessionAnalysis, signalAggregation, surveySynthesis, narrativeReport),
		SurveyHandler:   handlers.NewSurveyHandler(aggregateRepo, snapshotRepo, reportRepo),
		SessionHandler:  handlers.NewSessionHandler(insightRepo),
		RealtimeHandler: handlers.NewRealtimeHandler(log, hub),
		HealthHandler:   handlers.NewHealthHandler(),
	})

	port := envutil.String("PORT", "8080")
	log.Info("Starting HTTP server", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("HTTP server exited", "error", err)
		os.Exit(1)
	}
}
