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

type SurveySynthesisService interface {
	SynthesizeSurvey(ctx context.Context, surveyID uuid.UUID) (*SurveySynthesisResult, error)
}

type SurveySynthesisResult struct {
	SurveyID              uuid.UUID `json:"survey_id"`
	Synthesized           bool      `json:"synthesized"`
	Reason                string    `json:"reason,omitempty"`
	SnapshotID            uuid.UUID `json:"snapshot_id,omitempty"`
	ConfidenceScore       int       `json:"confidence_score,omitempty"`
	TotalSessionsAnalyzed int       `json:"total_sessions_analyzed,omitempty"`
}

const (
	defaultUrgencyThreshold = 0.7
	maxRootCauseSamples     = 10
	maxUrgentExcerpts       = 8
)

type surveySynthesisService struct {
	db               *gorm.DB
	log              *logger.Logger
	surveyRepo       repos.SurveyRepo
	themeRepo        repos.SurveyThemeRepo
	sessionRepo      repos.FeedbackSessionRepo
	responseRepo     repos.SessionResponseRepo
	insightRepo      repos.SessionInsightRepo
	snapshotRepo     repos.SurveyAnalyticsSnapshotRepo
	ai               AIClient
	events           EventPublisher
	urgencyThreshold float64
}

func NewSurveySynthesisService(
	db *gorm.DB,
	baseLog *logger.Logger,
	surveyRepo repos.SurveyRepo,
	themeRepo repos.SurveyThemeRepo,
	sessionRepo repos.FeedbackSessionRepo,
	responseRepo repos.SessionResponseRepo,
	insightRepo repos.SessionInsightRepo,
	snapshotRepo repos.SurveyAnalyticsSnapshotRepo,
	ai AIClient,
	events EventPublisher,
) SurveySynthesisService {
	return &surveySynthesisService{
		db:               db,
		log:              baseLog.With("service", "SurveySynthesisService"),
		surveyRepo:       surveyRepo,
		themeRepo:        themeRepo,
		sessionRepo:      sessionRepo,
		responseRepo:     responseRepo,
		insightRepo:      insightRepo,
		snapshotRepo:     snapshotRepo,
		ai:               ai,
		events:           events,
		urgencyThreshold: defaultUrgencyThreshold,
	}
}

func (s *surveySynthesisService) SynthesizeSurvey(ctx context.Context, surveyID uuid.UUID) (*SurveySynthesisResult, error) {
	ctx, span := otel.Tracer("services").Start(ctx, "SurveySynthesis.SynthesizeSurvey")
	defer span.End()
	span.SetAttributes(attribute.String("survey_id", surveyID.String()))

	survey, err := s.surveyRepo.GetByID(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load survey %s: %w", surveyID, err)
	}

	sessions, err := s.sessionRepo.GetCompletedBySurveyID(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load sessions for survey %s: %w", surveyID, err)
	}
	if len(sessions) == 0 {
		s.log.Info("survey has no completed sessions; nothing to synthesize", "survey_id", surveyID)
		return &SurveySynthesisResult{SurveyID: surveyID, Synthesized: false, Reason: "no completed sessions"}, nil
	}

	themes, err := s.themeRepo.GetBySurveyID(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load themes for survey %s: %w", surveyID, err)
	}
	responses, err := s.responseRepo.GetBySurveyID(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load responses for survey %s: %w", surveyID, err)
	}
	insights, err := s.insightRepo.GetBySurveyID(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load insights for survey %s: %w", surveyID, err)
	}

	latest := latestInsightPerSession(insights)
	stats := computeSurveyStats(themes, responses, latest, s.urgencyThreshold)

	prompt := prompts.SurveySynthesis(prompts.SynthesisInput{
		SurveyTitle:      survey.Title,
		TotalSessions:    len(sessions),
		TotalResponses:   stats.TotalResponses,
		MeanSentiment:    stats.MeanSentiment,
		UrgentResponses:  stats.UrgentCount,
		ThemeStats:       stats.ThemeStats,
		TrajectoryCounts: stats.TrajectoryCounts,
		RootCauseSamples: sampleRootCauses(latest, maxRootCauseSamples),
		UrgentExcerpts:   urgentExcerpts(responses, s.urgencyThreshold, maxUrgentExcerpts),
	})

	obj, err := s.ai.GenerateJSON(ctx, prompt.System, prompt.User, prompt.SchemaName, prompt.Schema)
	if err != nil {
		s.log.Error("survey synthesis oracle call failed", "survey_id", surveyID, "error", err)
		publishRunFailure(ctx, s.events, sse.SurveyChannel(surveyID), "survey_synthesis", err)
		return nil, fmt.Errorf("%w: survey %s: %v", pkgerrors.ErrUpstreamAnalysis, surveyID, err)
	}

	snapshot, err := parseSnapshot(obj, surveyID, len(sessions))
	if err != nil {
		s.log.Error("survey synthesis payload rejected", "survey_id", surveyID, "error", err)
		publishRunFailure(ctx, s.events, sse.SurveyChannel(surveyID), "survey_synthesis", err)
		return nil, fmt.Errorf("%w: survey %s: %v", pkgerrors.ErrUpstreamAnalysis, surveyID, err)
	}

	if _, err := s.snapshotRepo.Create(ctx, nil, snapshot); err != nil {
		return nil, fmt.Errorf("persist analytics snapshot: %w", err)
	}

	s.log.Info("survey synthesized",
		"survey_id", surveyID,
		"snapshot_id", snapshot.ID,
		"sessions", len(sessions),
		"confidence", snapshot.ConfidenceScore,
	)
	publishEvent(ctx, s.events, sse.Message{
		Channel: sse.SurveyChannel(surveyID),
		Event:   sse.EventSurveySynthesisCompleted,
		Data:    map[string]any{"snapshot_id": snapshot.ID},
	})

	return &SurveySynthesisResult{
		SurveyID:              surveyID,
		Synthesized:           true,
		SnapshotID:            snapshot.ID,
		ConfidenceScore:       snapshot.ConfidenceScore,
		TotalSessionsAnalyzed: len(sessions),
	}, nil
}

func parseSnapshot(obj map[string]any, surveyID uuid.UUID, totalSessions int) (*types.SurveyAnalyticsSnapshot, error) {
	summary, err := payloadString(obj, "executive_summary")
	if err != nil {
		return nil, err
	}
	if summary == "" {
		return nil, fmt.Errorf("executive_summary is empty")
	}

	topThemes, err := payloadObjectSlice(obj, "top_themes")
	if err != nil {
		return nil, err
	}
	if len(topThemes) < 5 || len(topThemes) > 7 {
		return nil, fmt.Errorf("top_themes count %d outside 5-7", len(topThemes))
	}

	trends, ok := obj["sentiment_trends"].(map[string]any)
	if !ok {
		return nil, fmt.Errorf("sentiment_trends is not an object")
	}
	if _, err := payloadString(trends, "direction"); err != nil {
		return nil, fmt.Errorf("sentiment_trends: %v", err)
	}

	cultural, err := payloadString(obj, "cultural_insights")
	if err != nil {
		return nil, err
	}
	risks, err := payloadStringSlice(obj, "risk_factors")
	if err != nil {
		return nil, err
	}
	if len(risks) < 3 || len(risks) > 5 {
		return nil, fmt.Errorf("risk_factors count %d outside 3-5", len(risks))
	}
	opportunities, err := payloadStringSlice(obj, "opportunities")
	if err != nil {
		return nil, err
	}
	if len(opportunities) < 3 || len(opportunities) > 5 {
		return nil, fmt.Errorf("opportunities count %d outside 3-5", len(opportunities))
	}
	recommendations, err := payloadObjectSlice(obj, "strategic_recommendations")
	if err != nil {
		return nil, err
	}
	if len(recommendations) < 5 || len(recommendations) > 7 {
		return nil, fmt.Errorf("strategic_recommendations count %d outside 5-7", len(recommendations))
	}
	participation, err := payloadString(obj, "participation_analysis")
	if err != nil {
		return nil, err
	}
	confidence, err := payloadInt(obj, "confidence_score")
	if err != nil {
		return nil, err
	}
	confidence = clampInt(confidence, 0, 100)

	themesJSON, _ := json.Marshal(topThemes)
	trendsJSON, _ := json.Marshal(trends)
	risksJSON, _ := json.Marshal(risks)
	oppsJSON, _ := json.Marshal(opportunities)
	recsJSON, _ := json.Marshal(recommendations)

	return &types.SurveyAnalyticsSnapshot{
		ID:                       uuid.New(),
		SurveyID:                 surveyID,
		ExecutiveSummary:         summary,
		TopThemes:                datatypes.JSON(themesJSON),
		SentimentTrends:          datatypes.JSON(trendsJSON),
		CulturalInsights:         cultural,
		RiskFactors:              datatypes.JSON(risksJSON),
		Opportunities:            datatypes.JSON(oppsJSON),
		StrategicRecommendations: datatypes.JSON(recsJSON),
		ParticipationAnalysis:    participation,
		ConfidenceScore:          confidence,
		TotalSessionsAnalyzed:    totalSessions,
	}, nil
}
