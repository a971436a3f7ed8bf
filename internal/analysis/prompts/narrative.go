package prompts

import (
	"fmt"
	"strings"

	types "github.com/openpulse/openpulse-backend/internal/domain"
)

// NarrativeInput carries the evidence the five-chapter narrative is written
// from. Responses are listed with their real ids so the oracle can cite them
// as evidence_ids.
type NarrativeInput struct {
	SurveyTitle      string
	Audience         string
	ExecutiveSummary string
	Responses        []*types.SessionResponse
	Insights         []*types.SessionInsight
}

var chapterTitles = map[string]string{
	"pulse":    "The Pulse",
	"working":  "What Is Working",
	"warnings": "Warning Signs",
	"why":      "Why It Is Happening",
	"forward":  "The Way Forward",
}

// NarrativeReport builds the chapter-generation request. Audience controls
// verbosity only; chapter count and order are fixed.
func NarrativeReport(in NarrativeInput) Prompt {
	var evidence strings.Builder
	for _, resp := range in.Responses {
		content := strings.TrimSpace(resp.Content)
		if len(content) > 300 {
			content = content[:300]
		}
		fmt.Fprintf(&evidence, "[%s] (sentiment %.2f) %s\n", resp.ID, resp.SentimentScore, content)
	}

	var findings strings.Builder
	for _, ins := range in.Insights {
		fmt.Fprintf(&findings, "- %s (trajectory: %s, confidence %d)\n",
			strings.TrimSpace(ins.RootCause), ins.SentimentTrajectory, ins.ConfidenceScore)
	}

	verbosity := "Write tight, executive-level prose: 2-3 paragraphs per chapter, lead with the conclusion."
	if in.Audience == types.AudienceDetailed {
		verbosity = "Write thorough prose: 4-6 paragraphs per chapter, walk through the supporting evidence."
	}

	summary := strings.TrimSpace(in.ExecutiveSummary)
	if summary == "" {
		summary = "(no prior executive synthesis available; work from the evidence below)"
	}

	system := "You write a five-chapter narrative report on an organizational feedback survey. " +
		"Chapters appear in this exact order with these keys: pulse (current mood), working (strengths), " +
		"warnings (risks), why (root causes), forward (recommendations).\n\n" +
		"Rules:\n" +
		"- Produce exactly these 5 chapters in that order. No extra chapters.\n" +
		"- Every insight needs a confidence from 1 (weak) to 5 (strong) and evidence_ids drawn from the " +
		"bracketed response ids in the evidence list. Never invent ids.\n" +
		"- category labels the kind of finding (e.g. morale, workload, leadership, process).\n" +
		"- " + verbosity + "\n"

	user := fmt.Sprintf(
		"SURVEY: %s\nAUDIENCE: %s\n\n"+
			"PRIOR EXECUTIVE SUMMARY:\n%s\n\n"+
			"SESSION-LEVEL FINDINGS:\n%s\n"+
			"EVIDENCE (response id, sentiment, excerpt):\n%s\n"+
			"Return JSON only.\n",
		in.SurveyTitle,
		in.Audience,
		summary,
		findings.String(),
		evidence.String(),
	)

	return Prompt{
		System:     system,
		User:       user,
		SchemaName: "narrative_report",
		Schema:     narrativeReportSchema(),
	}
}

func narrativeReportSchema() map[string]any {
	insight := ObjectSchema(map[string]any{
		"text":         StringSchema(),
		"confidence":   IntRangeSchema(1, 5),
		"evidence_ids": StringArraySchema(),
		"category":     StringSchema(),
	}, []string{"text", "confidence", "evidence_ids", "category"})

	chapter := ObjectSchema(map[string]any{
		"key":       EnumSchema(types.ChapterKeys...),
		"title":     StringSchema(),
		"narrative": StringSchema(),
		"insights":  ArraySchema(insight, 1, 0),
	}, []string{"key", "title", "narrative", "insights"})

	return ObjectSchema(map[string]any{
		"chapters":         ArraySchema(chapter, 5, 5),
		"confidence_score": IntRangeSchema(0, 100),
	}, []string{"chapters", "confidence_score"})
}

// ChapterTitle returns the display title for a chapter key.
func ChapterTitle(key string) string {
	if t, ok := chapterTitles[key]; ok {
		return t
	}
	return key
}
