package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openpulse/openpulse-backend/internal/http/response"
	pkgerrors "github.com/openpulse/openpulse-backend/internal/pkg/errors"
	"github.com/openpulse/openpulse-backend/internal/services"
)

type AnalysisHandler struct {
	sessions   services.SessionAnalysisService
	aggregator services.SignalAggregationService
	synthesis  services.SurveySynthesisService
	narrative  services.NarrativeReportService
}

func NewAnalysisHandler(
	sessions services.SessionAnalysisService,
	aggregator services.SignalAggregationService,
	synthesis services.SurveySynthesisService,
	narrative services.NarrativeReportService,
) *AnalysisHandler {
	return &AnalysisHandler{
		sessions:   sessions,
		aggregator: aggregator,
		synthesis:  synthesis,
		narrative:  narrative,
	}
}

// respondServiceError maps pipeline errors onto HTTP statuses. Upstream
// oracle failures surface as 502 so callers can distinguish them from bad
// requests.
func respondServiceError(c *gin.Context, code string, err error) {
	switch {
	case errors.Is(err, pkgerrors.ErrNotFound):
		response.RespondError(c, http.StatusNotFound, code, err)
	case errors.Is(err, pkgerrors.ErrInvalidArgument):
		response.RespondError(c, http.StatusBadRequest, code, err)
	case errors.Is(err, pkgerrors.ErrUpstreamAnalysis):
		response.RespondError(c, http.StatusBadGateway, code, err)
	default:
		response.RespondError(c, http.StatusInternalServerError, code, err)
	}
}

// POST /api/analysis/sessions
func (h *AnalysisHandler) AnalyzeSession(c *gin.Context) {
	var req struct {
		SessionID uuid.UUID `json:"session_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.sessions.AnalyzeSession(c.Request.Context(), req.SessionID)
	if err != nil {
		respondServiceError(c, "session_analysis_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}

// POST /api/analysis/aggregate
func (h *AnalysisHandler) AggregateSignals(c *gin.Context) {
	var req struct {
		SurveyID uuid.UUID `json:"survey_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.aggregator.AggregateSurveySignals(c.Request.Context(), req.SurveyID)
	if err != nil {
		respondServiceError(c, "signal_aggregation_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}

// POST /api/analysis/synthesize
func (h *AnalysisHandler) SynthesizeSurvey(c *gin.Context) {
	var req struct {
		SurveyID uuid.UUID `json:"survey_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.synthesis.SynthesizeSurvey(c.Request.Context(), req.SurveyID)
	if err != nil {
		respondServiceError(c, "survey_synthesis_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}

// POST /api/analysis/narrative
func (h *AnalysisHandler) GenerateNarrative(c *gin.Context) {
	var req struct {
		SurveyID uuid.UUID `json:"survey_id" binding:"required"`
		Audience string    `json:"audience"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	result, err := h.narrative.GenerateReport(c.Request.Context(), req.SurveyID, req.Audience)
	if err != nil {
		respondServiceError(c, "narrative_report_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"result": result})
}
