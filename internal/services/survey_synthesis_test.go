package services

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func validSnapshotPayload() map[string]any {
	theme := func(name string) any {
		return map[string]any{"name": name, "summary": "what respondents said about " + name}
	}
	rec := func(title string) any {
		return map[string]any{"title": title, "rationale": "because the data says so"}
	}
	return map[string]any{
		"executive_summary": "Sentiment is slipping, driven by workload.",
		"top_themes":        []any{theme("workload"), theme("leadership"), theme("tooling"), theme("process"), theme("culture")},
		"sentiment_trends": map[string]any{
			"direction":         "declining",
			"momentum":          "accelerating",
			"inflection_points": []any{"reorg announcement"},
		},
		"cultural_insights": "Teams still trust their direct managers.",
		"risk_factors":      []any{"attrition on platform team", "on-call burnout", "silent disengagement"},
		"opportunities":     []any{"manager trust", "strong peer support", "appetite for process change"},
		"strategic_recommendations": []any{
			rec("backfill platform roles"), rec("cap concurrent initiatives"), rec("publish a stable roadmap"),
			rec("rebalance on-call"), rec("follow up with detractors"),
		},
		"participation_analysis": "Participation held steady at 78%.",
		"confidence_score":       float64(72),
	}
}

func TestParseSnapshot(t *testing.T) {
	surveyID := uuid.New()
	snapshot, err := parseSnapshot(validSnapshotPayload(), surveyID, 12)
	require.NoError(t, err)
	require.Equal(t, surveyID, snapshot.SurveyID)
	require.Equal(t, 72, snapshot.ConfidenceScore)
	require.Equal(t, 12, snapshot.TotalSessionsAnalyzed)
	require.NotEmpty(t, snapshot.TopThemes)
	require.NotEmpty(t, snapshot.SentimentTrends)
}

func TestParseSnapshot_Rejections(t *testing.T) {
	cases := map[string]func(map[string]any){
		"empty summary":       func(p map[string]any) { p["executive_summary"] = "" },
		"too few themes":      func(p map[string]any) { p["top_themes"] = p["top_themes"].([]any)[:4] },
		"trends not object":   func(p map[string]any) { p["sentiment_trends"] = "declining" },
		"missing direction":   func(p map[string]any) { p["sentiment_trends"] = map[string]any{} },
		"too few risks":       func(p map[string]any) { p["risk_factors"] = []any{"just one"} },
		"too many risks":      func(p map[string]any) { p["risk_factors"] = []any{"1", "2", "3", "4", "5", "6"} },
		"too few recs":        func(p map[string]any) { p["strategic_recommendations"] = p["strategic_recommendations"].([]any)[:3] },
		"missing confidence":  func(p map[string]any) { delete(p, "confidence_score") },
		"opportunities empty": func(p map[string]any) { p["opportunities"] = []any{} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			payload := validSnapshotPayload()
			mutate(payload)
			_, err := parseSnapshot(payload, uuid.New(), 1)
			require.Error(t, err)
		})
	}
}
