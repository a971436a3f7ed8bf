package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	types "github.com/openpulse/openpulse-backend/internal/domain"
)

func validInsightPayload() map[string]any {
	return map[string]any{
		"root_cause":           "chronic understaffing on the platform team",
		"sentiment_trajectory": types.TrajectoryDeclining,
		"key_quotes":           []any{"quote one", "quote two", "quote three"},
		"recommended_actions": []any{
			map[string]any{"action": "backfill the two open roles", "priority": "high", "timeframe": "immediate"},
			map[string]any{"action": "pause non-critical migrations", "priority": "medium", "timeframe": "short_term"},
			map[string]any{"action": "revisit on-call rotation", "priority": "low", "timeframe": "long_term"},
		},
		"confidence_score": float64(85),
	}
}

func TestParseSessionInsight(t *testing.T) {
	session := &types.FeedbackSession{ID: uuid.New(), SurveyID: uuid.New()}

	insight, err := parseSessionInsight(validInsightPayload(), session)
	require.NoError(t, err)
	require.Equal(t, session.ID, insight.SessionID)
	require.Equal(t, session.SurveyID, insight.SurveyID)
	require.Equal(t, types.TrajectoryDeclining, insight.SentimentTrajectory)
	require.Equal(t, 85, insight.ConfidenceScore)
	require.NotEmpty(t, insight.KeyQuotes)
	require.NotEmpty(t, insight.RecommendedActions)
}

func TestParseSessionInsight_Rejections(t *testing.T) {
	session := &types.FeedbackSession{ID: uuid.New(), SurveyID: uuid.New()}

	cases := map[string]func(map[string]any){
		"empty root cause":      func(p map[string]any) { p["root_cause"] = "" },
		"bad trajectory":        func(p map[string]any) { p["sentiment_trajectory"] = "sideways" },
		"too few quotes":        func(p map[string]any) { p["key_quotes"] = []any{"only", "two"} },
		"too many quotes":       func(p map[string]any) { p["key_quotes"] = []any{"1", "2", "3", "4", "5", "6"} },
		"missing actions":       func(p map[string]any) { delete(p, "recommended_actions") },
		"too few actions":       func(p map[string]any) { p["recommended_actions"] = p["recommended_actions"].([]any)[:2] },
		"action missing fields": func(p map[string]any) { p["recommended_actions"].([]any)[0] = map[string]any{"action": "x"} },
		"missing confidence":    func(p map[string]any) { delete(p, "confidence_score") },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			payload := validInsightPayload()
			mutate(payload)
			_, err := parseSessionInsight(payload, session)
			require.Error(t, err)
		})
	}
}

func TestParseSessionInsight_ClampsConfidence(t *testing.T) {
	session := &types.FeedbackSession{ID: uuid.New(), SurveyID: uuid.New()}
	payload := validInsightPayload()
	payload["confidence_score"] = float64(250)

	insight, err := parseSessionInsight(payload, session)
	require.NoError(t, err)
	require.Equal(t, 100, insight.ConfidenceScore)
}
