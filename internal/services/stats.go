package services

import (
	"math"
	"sort"

	"github.com/google/uuid"

	"github.com/openpulse/openpulse-backend/internal/analysis/prompts"
	types "github.com/openpulse/openpulse-backend/internal/domain"
)

// Deterministic survey statistics. These are exact arithmetic over loaded
// rows and are never delegated to the oracle.

type surveyStats struct {
	TotalResponses   int
	MeanSentiment    float64
	UrgentCount      int
	ThemeStats       []prompts.ThemeStat
	TrajectoryCounts map[string]int
}

func computeSurveyStats(
	themes []*types.SurveyTheme,
	responses []*types.SessionResponse,
	latestInsights map[uuid.UUID]*types.SessionInsight,
	urgencyThreshold float64,
) surveyStats {
	stats := surveyStats{
		TotalResponses:   len(responses),
		TrajectoryCounts: map[string]int{},
	}

	var sentimentSum float64
	themeSums := map[uuid.UUID]*prompts.ThemeStat{}
	themeCounts := map[uuid.UUID]int{}
	for _, resp := range responses {
		sentimentSum += resp.SentimentScore
		if resp.UrgencyScore >= urgencyThreshold {
			stats.UrgentCount++
		}
		if resp.ThemeID != nil {
			ts, ok := themeSums[*resp.ThemeID]
			if !ok {
				ts = &prompts.ThemeStat{}
				themeSums[*resp.ThemeID] = ts
			}
			ts.Responses++
			ts.MeanSentiment += resp.SentimentScore
			themeCounts[*resp.ThemeID]++
		}
	}
	if len(responses) > 0 {
		stats.MeanSentiment = round2(sentimentSum / float64(len(responses)))
	}

	for _, theme := range themes {
		ts := prompts.ThemeStat{Name: theme.Name}
		if sums, ok := themeSums[theme.ID]; ok {
			ts.Responses = sums.Responses
			ts.MeanSentiment = round2(sums.MeanSentiment / float64(themeCounts[theme.ID]))
		}
		stats.ThemeStats = append(stats.ThemeStats, ts)
	}

	for _, insight := range latestInsights {
		stats.TrajectoryCounts[insight.SentimentTrajectory]++
	}

	return stats
}

// latestInsightPerSession relies on SessionInsightRepo.GetBySurveyID ordering
// (session ASC, created_at DESC): the first row seen per session is the latest.
func latestInsightPerSession(insights []*types.SessionInsight) map[uuid.UUID]*types.SessionInsight {
	out := map[uuid.UUID]*types.SessionInsight{}
	for _, insight := range insights {
		if _, seen := out[insight.SessionID]; !seen {
			out[insight.SessionID] = insight
		}
	}
	return out
}

func sampleRootCauses(latestInsights map[uuid.UUID]*types.SessionInsight, max int) []string {
	insights := make([]*types.SessionInsight, 0, len(latestInsights))
	for _, insight := range latestInsights {
		insights = append(insights, insight)
	}
	// Stable order for reproducible prompts.
	sort.Slice(insights, func(i, j int) bool {
		return insights[i].SessionID.String() < insights[j].SessionID.String()
	})

	out := make([]string, 0, max)
	for _, insight := range insights {
		if len(out) >= max {
			break
		}
		if insight.RootCause != "" {
			out = append(out, insight.RootCause)
		}
	}
	return out
}

func urgentExcerpts(responses []*types.SessionResponse, threshold float64, max int) []string {
	urgent := make([]*types.SessionResponse, 0)
	for _, resp := range responses {
		if resp.UrgencyScore >= threshold {
			urgent = append(urgent, resp)
		}
	}
	sort.Slice(urgent, func(i, j int) bool {
		if urgent[i].UrgencyScore != urgent[j].UrgencyScore {
			return urgent[i].UrgencyScore > urgent[j].UrgencyScore
		}
		return urgent[i].ID.String() < urgent[j].ID.String()
	})

	out := make([]string, 0, max)
	for _, resp := range urgent {
		if len(out) >= max {
			break
		}
		content := resp.Content
		if len(content) > 200 {
			content = content[:200]
		}
		out = append(out, content)
	}
	return out
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
