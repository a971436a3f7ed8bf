package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openpulse/openpulse-backend/internal/data/repos"
	"github.com/openpulse/openpulse-backend/internal/http/response"
)

type SessionHandler struct {
	insights repos.SessionInsightRepo
}

func NewSessionHandler(insights repos.SessionInsightRepo) *SessionHandler {
	return &SessionHandler{insights: insights}
}

// GET /api/sessions/:id/insights
func (h *SessionHandler) GetInsights(c *gin.Context) {
	sessionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_session_id", err)
		return
	}
	insights, err := h.insights.GetBySessionID(c.Request.Context(), nil, sessionID)
	if err != nil {
		respondServiceError(c, "list_insights_failed", err)
		return
	}
	response.RespondOK(c, gin.H{"insights": insights})
}
