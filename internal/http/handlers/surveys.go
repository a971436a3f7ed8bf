package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openpulse/openpulse-backend/internal/data/repos"
	"github.com/openpulse/openpulse-backend/internal/http/response"
)

type SurveyHandler struct {
	aggregates repos.AggregatedSignalRepo
	snapshots  repos.SurveyAnalyticsSnapshotRepo
	reports    repos.NarrativeReportRepo
}

func NewSurveyHandler(
	aggregates repos.AggregatedSignalRepo,
	snapshots repos.SurveyAnalyticsSnapshotRepo,
	reports repos.NarrativeReportRepo,
) *SurveyHandler {
	return &SurveyHandler{aggregates: aggregates, snapshots: snapshots, reports: reports}
}

func parseSurveyID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return uuid.Nil, false
	}
	return id, true
}

// GET /api/surveys/:id/aggregates
func (h *SurveyHandler) GetAggregates(c *gin.Context) {
	surveyID, ok := parseSurveyID(c)
	if !ok {
		return
	}
	aggregates, err := h.aggregates.GetBySurveyID(c.Request.Context(), nil, surveyID)
	if err != nil {
		respondServiceError(c, "list_aggregates_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"aggregates": aggregates})
}

// GET /api/surveys/:id/snapshots/latest
func (h *SurveyHandler) GetLatestSnapshot(c *gin.Context) {
	surveyID, ok := parseSurveyID(c)
	if !ok {
		return
	}
	snapshot, err := h.snapshots.GetLatestBySurveyID(c.Request.Context(), nil, surveyID)
	if err != nil {
		respondServiceError(c, "snapshot_not_found", err)
		return
	}
	response.RespondOK(c, gin.H{"snapshot": snapshot})
}

// GET /api/surveys/:id/report
func (h *SurveyHandler) GetLatestReport(c *gin.Context) {
	surveyID, ok := parseSurveyID(c)
	if !ok {
		return
	}
	report, err := h.reports.GetLatestBySurveyID(c.Request.Context(), nil, surveyID)
	if err != nil {
		respondServiceError(c, "report_not_found", err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}
