package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/openpulse/openpulse-backend/internal/http/response"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
	"github.com/openpulse/openpulse-backend/internal/sse"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *sse.Hub
}

func NewRealtimeHandler(log *logger.Logger, hub *sse.Hub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/surveys/:id/events
//
// Streams pipeline events for one survey until the client disconnects.
func (h *RealtimeHandler) StreamSurveyEvents(c *gin.Context) {
	surveyID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_survey_id", err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		response.RespondError(c, http.StatusInternalServerError, "streaming_unsupported", fmt.Errorf("response writer does not support flushing"))
		return
	}

	client := h.hub.NewClient()
	h.hub.Subscribe(client, sse.SurveyChannel(surveyID))
	defer h.hub.Disconnect(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	fmt.Fprintf(c.Writer, "event: connected\ndata: {\"client_id\":%q}\n\n", client.ID)
	flusher.Flush()

	h.log.Info("SSE stream open", "client_id", client.ID, "survey_id", surveyID)
	for {
		select {
		case <-c.Request.Context().Done():
			h.log.Info("SSE stream closed", "client_id", client.ID)
			return
		case msg := <-client.Outbound:
			payload, err := json.Marshal(msg.Data)
			if err != nil {
				h.log.Warn("SSE payload encode failed", "client_id", client.ID, "error", err)
				continue
			}
			fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", msg.Event, payload)
			flusher.Flush()
		}
	}
}
