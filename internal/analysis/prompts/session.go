package prompts

import (
	"fmt"
	"strings"

	types "github.com/openpulse/openpulse-backend/internal/domain"
)

// SessionInsight builds the single-session analysis request: full transcript
// plus the compact sentiment-score series, extracted into root cause,
// trajectory, verbatim quotes and recommended actions.
func SessionInsight(responses []*types.SessionResponse) Prompt {
	var transcript strings.Builder
	var scores []string
	for i, resp := range responses {
		fmt.Fprintf(&transcript, "%d. %s\n", i+1, strings.TrimSpace(resp.Content))
		scores = append(scores, fmt.Sprintf("%.2f", resp.SentimentScore))
	}

	system := "You are an organizational feedback analyst. You are given the full transcript of one feedback conversation, " +
		"in order, together with the per-response sentiment score series (range -1 to 1). " +
		"Identify the single most plausible root cause behind this person's feedback, judge how their sentiment moved over " +
		"the conversation, and propose concrete actions.\n\n" +
		"Rules:\n" +
		"- key_quotes must be verbatim excerpts from the transcript. Do not paraphrase.\n" +
		"- Ground every claim in the transcript. Do not invent context.\n" +
		"- confidence_score reflects how well the transcript supports your analysis (0-100).\n"

	user := fmt.Sprintf(
		"TRANSCRIPT (ordered responses):\n%s\n"+
			"SENTIMENT SERIES (same order): [%s]\n\n"+
			"Return JSON only.\n",
		transcript.String(),
		strings.Join(scores, ", "),
	)

	return Prompt{
		System:     system,
		User:       user,
		SchemaName: "session_insight",
		Schema:     sessionInsightSchema(),
	}
}

func sessionInsightSchema() map[string]any {
	action := ObjectSchema(map[string]any{
		"action":    StringSchema(),
		"priority":  EnumSchema("high", "medium", "low"),
		"timeframe": EnumSchema("immediate", "short_term", "long_term"),
	}, []string{"action", "priority", "timeframe"})

	return ObjectSchema(map[string]any{
		"root_cause": StringSchema(),
		"sentiment_trajectory": EnumSchema(
			types.TrajectoryImproving,
			types.TrajectoryDeclining,
			types.TrajectoryStable,
			types.TrajectoryMixed,
		),
		"key_quotes":          ArraySchema(StringSchema(), 3, 5),
		"recommended_actions": ArraySchema(action, 3, 5),
		"confidence_score":    IntRangeSchema(0, 100),
	}, []string{"root_cause", "sentiment_trajectory", "key_quotes", "recommended_actions", "confidence_score"})
}
