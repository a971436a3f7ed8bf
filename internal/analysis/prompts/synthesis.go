package prompts

import (
	"fmt"
	"strings"
)

// ThemeStat is a deterministic per-theme rollup computed before the oracle is
// consulted.
type ThemeStat struct {
	Name          string
	Responses     int
	MeanSentiment float64
}

// SynthesisInput carries everything the survey-level synthesis request needs.
// All numbers are exact arithmetic over loaded rows; the oracle only narrates
// on top of them.
type SynthesisInput struct {
	SurveyTitle      string
	TotalSessions    int
	TotalResponses   int
	MeanSentiment    float64
	UrgentResponses  int
	ThemeStats       []ThemeStat
	TrajectoryCounts map[string]int
	RootCauseSamples []string
	UrgentExcerpts   []string
}

// SurveySynthesis builds the executive deep-analytics request.
func SurveySynthesis(in SynthesisInput) Prompt {
	var themes strings.Builder
	for _, ts := range in.ThemeStats {
		fmt.Fprintf(&themes, "- %s: %d responses, mean sentiment %.2f\n", ts.Name, ts.Responses, ts.MeanSentiment)
	}

	var trajectories strings.Builder
	for _, key := range []string{"improving", "declining", "stable", "mixed"} {
		if n, ok := in.TrajectoryCounts[key]; ok && n > 0 {
			fmt.Fprintf(&trajectories, "- %s: %d sessions\n", key, n)
		}
	}

	var causes strings.Builder
	for _, rc := range in.RootCauseSamples {
		fmt.Fprintf(&causes, "- %s\n", strings.TrimSpace(rc))
	}

	var urgent strings.Builder
	for _, ex := range in.UrgentExcerpts {
		fmt.Fprintf(&urgent, "- %q\n", strings.TrimSpace(ex))
	}

	system := "You are a senior people-analytics advisor preparing an executive snapshot of an organizational " +
		"feedback survey. You receive exact summary statistics plus sampled evidence; do not recompute or " +
		"contradict the numbers.\n\n" +
		"Rules:\n" +
		"- Every theme, risk and recommendation must trace to the statistics or the sampled evidence.\n" +
		"- Rank top_themes by organizational importance, most important first.\n" +
		"- sentiment_trends describes direction, momentum and any inflection points you can justify.\n" +
		"- confidence_score reflects evidence coverage (0-100).\n"

	user := fmt.Sprintf(
		"SURVEY: %s\n\n"+
			"STATISTICS (exact):\n"+
			"- completed sessions analyzed: %d\n"+
			"- total responses: %d\n"+
			"- mean sentiment score: %.2f\n"+
			"- responses above urgency threshold: %d\n\n"+
			"PER-THEME:\n%s\n"+
			"SENTIMENT TRAJECTORIES (per session):\n%s\n"+
			"SAMPLED ROOT CAUSES:\n%s\n"+
			"HIGH-URGENCY EXCERPTS:\n%s\n"+
			"Return JSON only.\n",
		in.SurveyTitle,
		in.TotalSessions,
		in.TotalResponses,
		in.MeanSentiment,
		in.UrgentResponses,
		themes.String(),
		trajectories.String(),
		causes.String(),
		urgent.String(),
	)

	return Prompt{
		System:     system,
		User:       user,
		SchemaName: "survey_synthesis",
		Schema:     surveySynthesisSchema(),
	}
}

func surveySynthesisSchema() map[string]any {
	topTheme := ObjectSchema(map[string]any{
		"theme":       StringSchema(),
		"importance":  EnumSchema("critical", "high", "moderate"),
		"sentiment":   EnumSchema("positive", "negative", "neutral", "mixed"),
		"key_finding": StringSchema(),
	}, []string{"theme", "importance", "sentiment", "key_finding"})

	trends := ObjectSchema(map[string]any{
		"direction":         EnumSchema("improving", "declining", "stable", "mixed"),
		"momentum":          EnumSchema("accelerating", "steady", "slowing"),
		"inflection_points": StringArraySchema(),
	}, []string{"direction", "momentum", "inflection_points"})

	recommendation := ObjectSchema(map[string]any{
		"recommendation": StringSchema(),
		"priority":       EnumSchema("critical", "high", "medium"),
		"stakeholders":   StringArraySchema(),
	}, []string{"recommendation", "priority", "stakeholders"})

	return ObjectSchema(map[string]any{
		"executive_summary":         StringSchema(),
		"top_themes":                ArraySchema(topTheme, 5, 7),
		"sentiment_trends":          trends,
		"cultural_insights":         StringSchema(),
		"risk_factors":              ArraySchema(StringSchema(), 3, 5),
		"opportunities":             ArraySchema(StringSchema(), 3, 5),
		"strategic_recommendations": ArraySchema(recommendation, 5, 7),
		"participation_analysis":    StringSchema(),
		"confidence_score":          IntRangeSchema(0, 100),
	}, []string{
		"executive_summary", "top_themes", "sentiment_trends", "cultural_insights",
		"risk_factors", "opportunities", "strategic_recommendations",
		"participation_analysis", "confidence_score",
	})
}
