package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openpulse/openpulse-backend/internal/analysis/prompts"
	"github.com/openpulse/openpulse-backend/internal/data/repos"
	types "github.com/openpulse/openpulse-backend/internal/domain"
	pkgerrors "github.com/openpulse/openpulse-backend/internal/pkg/errors"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
	"github.com/openpulse/openpulse-backend/internal/sse"
)

type SessionAnalysisService interface {
	AnalyzeSession(ctx context.Context, sessionID uuid.UUID) (*SessionAnalysisResult, error)
}

type SessionAnalysisResult struct {
	SessionID           uuid.UUID `json:"session_id"`
	Analyzed            bool      `json:"analyzed"`
	Reason              string    `json:"reason,omitempty"`
	InsightID           uuid.UUID `json:"insight_id,omitempty"`
	SentimentTrajectory string    `json:"sentiment_trajectory,omitempty"`
	ConfidenceScore     int       `json:"confidence_score,omitempty"`
}

type sessionAnalysisService struct {
	db           *gorm.DB
	log          *logger.Logger
	sessionRepo  repos.FeedbackSessionRepo
	responseRepo repos.SessionResponseRepo
	insightRepo  repos.SessionInsightRepo
	ai           AIClient
	events       EventPublisher
}

func NewSessionAnalysisService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sessionRepo repos.FeedbackSessionRepo,
	responseRepo repos.SessionResponseRepo,
	insightRepo repos.SessionInsightRepo,
	ai AIClient,
	events EventPublisher,
) SessionAnalysisService {
	return &sessionAnalysisService{
		db:           db,
		log:          baseLog.With("service", "SessionAnalysisService"),
		sessionRepo:  sessionRepo,
		responseRepo: responseRepo,
		insightRepo:  insightRepo,
		ai:           ai,
		events:       events,
	}
}

func (s *sessionAnalysisService) AnalyzeSession(ctx context.Context, sessionID uuid.UUID) (*SessionAnalysisResult, error) {
	ctx, span := otel.Tracer("services").Start(ctx, "SessionAnalysis.AnalyzeSession")
	defer span.End()
	span.SetAttributes(attribute.String("session_id", sessionID.String()))

	session, err := s.sessionRepo.GetByID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", sessionID, err)
	}

	responses, err := s.responseRepo.GetBySessionID(ctx, nil, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load responses for session %s: %w", sessionID, err)
	}
	if len(responses) == 0 {
		s.log.Info("session has no responses; skipping analysis", "session_id", sessionID)
		return &SessionAnalysisResult{SessionID: sessionID, Analyzed: false, Reason: "no responses"}, nil
	}

	prompt := prompts.SessionInsight(responses)
	obj, err := s.ai.GenerateJSON(ctx, prompt.System, prompt.User, prompt.SchemaName, prompt.Schema)
	if err != nil {
		s.log.Error("session analysis oracle call failed", "session_id", sessionID, "error", err)
		publishRunFailure(ctx, s.events, sse.SurveyChannel(session.SurveyID), "session_analysis", err)
		return nil, fmt.Errorf("%w: session %s: %v", pkgerrors.ErrUpstreamAnalysis, sessionID, err)
	}

	insight, err := parseSessionInsight(obj, session)
	if err != nil {
		s.log.Error("session analysis payload rejected", "session_id", sessionID, "error", err)
		publishRunFailure(ctx, s.events, sse.SurveyChannel(session.SurveyID), "session_analysis", err)
		return nil, fmt.Errorf("%w: session %s: %v", pkgerrors.ErrUpstreamAnalysis, sessionID, err)
	}

	if _, err := s.insightRepo.Create(ctx, nil, insight); err != nil {
		return nil, fmt.Errorf("persist session insight: %w", err)
	}

	s.log.Info("session analyzed",
		"session_id", sessionID,
		"insight_id", insight.ID,
		"trajectory", insight.SentimentTrajectory,
		"confidence", insight.ConfidenceScore,
	)
	publishEvent(ctx, s.events, sse.Message{
		Channel: sse.SurveyChannel(session.SurveyID),
		Event:   sse.EventSessionAnalysisCompleted,
		Data:    map[string]any{"session_id": sessionID, "insight_id": insight.ID},
	})

	return &SessionAnalysisResult{
		SessionID:           sessionID,
		Analyzed:            true,
		InsightID:           insight.ID,
		SentimentTrajectory: insight.SentimentTrajectory,
		ConfidenceScore:     insight.ConfidenceScore,
	}, nil
}

// parseSessionInsight validates the structured payload: required keys, enum
// membership and bounded list sizes. Anything off-contract rejects the whole
// payload; there is no partial insight.
func parseSessionInsight(obj map[string]any, session *types.FeedbackSession) (*types.SessionInsight, error) {
	rootCause, err := payloadString(obj, "root_cause")
	if err != nil {
		return nil, err
	}
	if rootCause == "" {
		return nil, fmt.Errorf("root_cause is empty")
	}

	trajectory, err := payloadString(obj, "sentiment_trajectory")
	if err != nil {
		return nil, err
	}
	if !types.ValidTrajectory(trajectory) {
		return nil, fmt.Errorf("sentiment_trajectory %q outside enum", trajectory)
	}

	quotes, err := payloadStringSlice(obj, "key_quotes")
	if err != nil {
		return nil, err
	}
	if len(quotes) < 3 || len(quotes) > 5 {
		return nil, fmt.Errorf("key_quotes count %d outside 3-5", len(quotes))
	}

	rawActions, err := payloadObjectSlice(obj, "recommended_actions")
	if err != nil {
		return nil, err
	}
	if len(rawActions) < 3 || len(rawActions) > 5 {
		return nil, fmt.Errorf("recommended_actions count %d outside 3-5", len(rawActions))
	}
	actions := make([]types.RecommendedAction, 0, len(rawActions))
	for i, raw := range rawActions {
		action, err := payloadString(raw, "action")
		if err != nil {
			return nil, fmt.Errorf("recommended_actions[%d]: %v", i, err)
		}
		priority, err := payloadString(raw, "priority")
		if err != nil {
			return nil, fmt.Errorf("recommended_actions[%d]: %v", i, err)
		}
		timeframe, err := payloadString(raw, "timeframe")
		if err != nil {
			return nil, fmt.Errorf("recommended_actions[%d]: %v", i, err)
		}
		actions = append(actions, types.RecommendedAction{
			Action:    action,
			Priority:  priority,
			Timeframe: timeframe,
		})
	}

	confidence, err := payloadInt(obj, "confidence_score")
	if err != nil {
		return nil, err
	}
	confidence = clampInt(confidence, 0, 100)

	quotesJSON, err := json.Marshal(quotes)
	if err != nil {
		return nil, err
	}
	actionsJSON, err := json.Marshal(actions)
	if err != nil {
		return nil, err
	}

	return &types.SessionInsight{
		ID:                  uuid.New(),
		SessionID:           session.ID,
		SurveyID:            session.SurveyID,
		RootCause:           rootCause,
		SentimentTrajectory: trajectory,
		KeyQuotes:           datatypes.JSON(quotesJSON),
		RecommendedActions:  datatypes.JSON(actionsJSON),
		ConfidenceScore:     confidence,
	}, nil
}
