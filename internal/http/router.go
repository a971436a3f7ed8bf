package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/openpulse/openpulse-backend/internal/http/handlers"
	httpMW "github.com/openpulse/openpulse-backend/internal/http/middleware"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log *logger.Logger

	AnalysisHandler *httpH.AnalysisHandler
	SurveyHandler   *httpH.SurveyHandler
	SessionHandler  *httpH.SessionHandler
	RealtimeHandler *httpH.RealtimeHandler
	HealthHandler   *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(otelgin.Middleware("openpulse-backend"))
	r.Use(httpMW.AttachRequestContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())

	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		if cfg.AnalysisHandler != nil {
			api.POST("/analysis/sessions", cfg.AnalysisHandler.AnalyzeSession)
			api.POST("/analysis/aggregate", cfg.AnalysisHandler.AggregateSignals)
			api.POST("/analysis/synthesize", cfg.AnalysisHandler.SynthesizeSurvey)
			api.POST("/analysis/narrative", cfg.AnalysisHandler.GenerateNarrative)
		}

		if cfg.SurveyHandler != nil {
			api.GET("/surveys/:id/aggregates", cfg.SurveyHandler.GetAggregates)
			api.GET("/surveys/:id/snapshots/latest", cfg.SurveyHandler.GetLatestSnapshot)
			api.GET("/surveys/:id/report", cfg.SurveyHandler.GetLatestReport)
		}

		if cfg.SessionHandler != nil {
			api.GET("/sessions/:id/insights", cfg.SessionHandler.GetInsights)
		}

		if cfg.RealtimeHandler != nil {
			api.GET("/surveys/:id/events", cfg.RealtimeHandler.StreamSurveyEvents)
		}
	}

	return r
}
