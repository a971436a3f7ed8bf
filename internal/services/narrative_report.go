package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

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

type NarrativeReportService interface {
	GenerateReport(ctx context.Context, surveyID uuid.UUID, audience string) (*NarrativeReportResult, error)
}

type NarrativeReportResult struct {
	SurveyID        uuid.UUID `json:"survey_id"`
	ReportID        uuid.UUID `json:"report_id"`
	Audience        string    `json:"audience"`
	Chapters        int       `json:"chapters"`
	ConfidenceScore int       `json:"confidence_score"`
}

// maxNarrativeResponses bounds the raw-response sample fed to the oracle.
const maxNarrativeResponses = 40

type narrativeReportService struct {
	db           *gorm.DB
	log          *logger.Logger
	surveyRepo   repos.SurveyRepo
	responseRepo repos.SessionResponseRepo
	insightRepo  repos.SessionInsightRepo
	snapshotRepo repos.SurveyAnalyticsSnapshotRepo
	reportRepo   repos.NarrativeReportRepo
	ai           AIClient
	events       EventPublisher
}

func NewNarrativeReportService(
	db *gorm.DB,
	baseLog *logger.Logger,
	surveyRepo repos.SurveyRepo,
	responseRepo repos.SessionResponseRepo,
	insightRepo repos.SessionInsightRepo,
	snapshotRepo repos.SurveyAnalyticsSnapshotRepo,
	reportRepo repos.NarrativeReportRepo,
	ai AIClient,
	events EventPublisher,
) NarrativeReportService {
	return &narrativeReportService{
		db:           db,
		log:          baseLog.With("service", "NarrativeReportService"),
		surveyRepo:   surveyRepo,
		responseRepo: responseRepo,
		insightRepo:  insightRepo,
		snapshotRepo: snapshotRepo,
		reportRepo:   reportRepo,
		ai:           ai,
		events:       events,
	}
}

func (s *narrativeReportService) GenerateReport(ctx context.Context, surveyID uuid.UUID, audience string) (*NarrativeReportResult, error) {
	ctx, span := otel.Tracer("services").Start(ctx, "NarrativeReport.GenerateReport")
	defer span.End()
	span.SetAttributes(
		attribute.String("survey_id", surveyID.String()),
		attribute.String("audience", audience),
	)

	switch audience {
	case "":
		audience = types.AudienceExecutive
	case types.AudienceExecutive, types.AudienceDetailed:
	default:
		return nil, fmt.Errorf("%w: unknown audience %q", pkgerrors.ErrInvalidArgument, audience)
	}

	survey, err := s.surveyRepo.GetByID(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load survey %s: %w", surveyID, err)
	}

	// The snapshot is optional context; a survey that was never synthesized
	// still gets a report.
	var executiveSummary string
	var snapshotID *uuid.UUID
	snapshot, err := s.snapshotRepo.GetLatestBySurveyID(ctx, nil, surveyID)
	switch {
	case err == nil:
		executiveSummary = snapshot.ExecutiveSummary
		snapshotID = &snapshot.ID
	case errors.Is(err, pkgerrors.ErrNotFound):
	default:
		return nil, fmt.Errorf("load latest snapshot for survey %s: %w", surveyID, err)
	}

	responses, err := s.responseRepo.GetRecentBySurveyID(ctx, nil, surveyID, maxNarrativeResponses)
	if err != nil {
		return nil, fmt.Errorf("load responses for survey %s: %w", surveyID, err)
	}
	insights, err := s.insightRepo.GetBySurveyID(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load insights for survey %s: %w", surveyID, err)
	}

	prompt := prompts.NarrativeReport(prompts.NarrativeInput{
		SurveyTitle:      survey.Title,
		Audience:         audience,
		ExecutiveSummary: executiveSummary,
		Responses:        responses,
		Insights:         insights,
	})

	obj, err := s.ai.GenerateJSON(ctx, prompt.System, prompt.User, prompt.SchemaName, prompt.Schema)
	if err != nil {
		s.log.Error("narrative oracle call failed", "survey_id", surveyID, "error", err)
		publishRunFailure(ctx, s.events, sse.SurveyChannel(surveyID), "narrative_report", err)
		return nil, fmt.Errorf("%w: survey %s: %v", pkgerrors.ErrUpstreamAnalysis, surveyID, err)
	}

	chapters, confidence, err := parseNarrativePayload(obj, responses)
	if err != nil {
		s.log.Error("narrative payload rejected", "survey_id", surveyID, "error", err)
		publishRunFailure(ctx, s.events, sse.SurveyChannel(surveyID), "narrative_report", err)
		return nil, fmt.Errorf("%w: survey %s: %v", pkgerrors.ErrUpstreamAnalysis, surveyID, err)
	}

	chaptersJSON, err := json.Marshal(chapters)
	if err != nil {
		return nil, fmt.Errorf("encode chapters: %w", err)
	}
	audienceJSON, _ := json.Marshal(map[string]any{"audience": audience})
	dataSnapshot := map[string]any{
		"responses_sampled": len(responses),
		"insights_used":     len(insights),
		"generated_at":      time.Now().UTC().Format(time.RFC3339),
	}
	if snapshotID != nil {
		dataSnapshot["analytics_snapshot_id"] = snapshotID.String()
	}
	dataSnapshotJSON, _ := json.Marshal(dataSnapshot)

	report := &types.NarrativeReport{
		ID:              uuid.New(),
		SurveyID:        surveyID,
		Chapters:        datatypes.JSON(chaptersJSON),
		AudienceConfig:  datatypes.JSON(audienceJSON),
		DataSnapshot:    datatypes.JSON(dataSnapshotJSON),
		ConfidenceScore: confidence,
		IsLatest:        true,
	}

	// Demote the previous holder and insert the new report in one
	// transaction so there is never a moment with zero or two latest rows.
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.reportRepo.DemoteBySurveyID(ctx, tx, surveyID); err != nil {
			return err
		}
		_, err := s.reportRepo.Create(ctx, tx, report)
		return err
	}); err != nil {
		return nil, fmt.Errorf("persist narrative report: %w", err)
	}

	s.log.Info("narrative report generated",
		"survey_id", surveyID,
		"report_id", report.ID,
		"audience", audience,
		"confidence", confidence,
	)
	publishEvent(ctx, s.events, sse.Message{
		Channel: sse.SurveyChannel(surveyID),
		Event:   sse.EventNarrativeReportCompleted,
		Data:    map[string]any{"report_id": report.ID, "audience": audience},
	})

	return &NarrativeReportResult{
		SurveyID:        surveyID,
		ReportID:        report.ID,
		Audience:        audience,
		Chapters:        len(chapters),
		ConfidenceScore: confidence,
	}, nil
}

// parseNarrativePayload validates chapter count, key order and insight
// bounds. Evidence ids that do not reference a sampled response are dropped
// so drill-down never dangles.
func parseNarrativePayload(obj map[string]any, responses []*types.SessionResponse) ([]types.Chapter, int, error) {
	rawChapters, err := payloadObjectSlice(obj, "chapters")
	if err != nil {
		return nil, 0, err
	}
	if len(rawChapters) != len(types.ChapterKeys) {
		return nil, 0, fmt.Errorf("expected %d chapters, got %d", len(types.ChapterKeys), len(rawChapters))
	}

	knownIDs := map[uuid.UUID]bool{}
	for _, resp := range responses {
		knownIDs[resp.ID] = true
	}

	chapters := make([]types.Chapter, 0, len(rawChapters))
	for i, raw := range rawChapters {
		key, err := payloadString(raw, "key")
		if err != nil {
			return nil, 0, fmt.Errorf("chapters[%d]: %v", i, err)
		}
		if key != types.ChapterKeys[i] {
			return nil, 0, fmt.Errorf("chapters[%d]: key %q, want %q", i, key, types.ChapterKeys[i])
		}
		title, err := payloadString(raw, "title")
		if err != nil {
			return nil, 0, fmt.Errorf("chapters[%d]: %v", i, err)
		}
		if title == "" {
			title = prompts.ChapterTitle(key)
		}
		narrative, err := payloadString(raw, "narrative")
		if err != nil {
			return nil, 0, fmt.Errorf("chapters[%d]: %v", i, err)
		}
		if narrative == "" {
			return nil, 0, fmt.Errorf("chapters[%d]: empty narrative", i)
		}

		rawInsights, err := payloadObjectSlice(raw, "insights")
		if err != nil {
			return nil, 0, fmt.Errorf("chapters[%d]: %v", i, err)
		}
		insights := make([]types.ReportInsight, 0, len(rawInsights))
		for j, rawInsight := range rawInsights {
			text, err := payloadString(rawInsight, "text")
			if err != nil {
				return nil, 0, fmt.Errorf("chapters[%d].insights[%d]: %v", i, j, err)
			}
			confidence, err := payloadInt(rawInsight, "confidence")
			if err != nil {
				return nil, 0, fmt.Errorf("chapters[%d].insights[%d]: %v", i, j, err)
			}
			if confidence < 1 || confidence > 5 {
				return nil, 0, fmt.Errorf("chapters[%d].insights[%d]: confidence %d outside 1-5", i, j, confidence)
			}
			category, err := payloadString(rawInsight, "category")
			if err != nil {
				return nil, 0, fmt.Errorf("chapters[%d].insights[%d]: %v", i, j, err)
			}
			rawIDs, err := payloadStringSlice(rawInsight, "evidence_ids")
			if err != nil {
				return nil, 0, fmt.Errorf("chapters[%d].insights[%d]: %v", i, j, err)
			}
			evidence := make([]uuid.UUID, 0, len(rawIDs))
			for _, rawID := range rawIDs {
				id, err := uuid.Parse(rawID)
				if err != nil || !knownIDs[id] {
					continue
				}
				evidence = append(evidence, id)
			}
			insights = append(insights, types.ReportInsight{
				Text:        text,
				Confidence:  confidence,
				EvidenceIDs: evidence,
				Category:    category,
			})
		}

		chapters = append(chapters, types.Chapter{
			Key:       key,
			Title:     title,
			Narrative: narrative,
			Insights:  insights,
		})
	}

	confidence, err := payloadInt(obj, "confidence_score")
	if err != nil {
		return nil, 0, err
	}
	return chapters, clampInt(confidence, 0, 100), nil
}
