package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openpulse/openpulse-backend/internal/data/repos"
	"github.com/openpulse/openpulse-backend/internal/data/repos/testutil"
	types "github.com/openpulse/openpulse-backend/internal/domain"
	pkgerrors "github.com/openpulse/openpulse-backend/internal/pkg/errors"
)

type stubAI struct {
	generateJSON func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error)
}

func (s *stubAI) GenerateJSON(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
	return s.generateJSON(ctx, system, user, schemaName, schema)
}

type stubClusterer struct {
	cluster func(ctx context.Context, dimension string, signals []*types.ResponseSignal) ([]SignalCluster, error)
}

func (s *stubClusterer) Cluster(ctx context.Context, dimension string, signals []*types.ResponseSignal) ([]SignalCluster, error) {
	return s.cluster(ctx, dimension, signals)
}

// oneClusterPerDimension collapses every dimension group into a single
// cluster carrying all members, which makes reruns deterministic.
func oneClusterPerDimension(ctx context.Context, dimension string, signals []*types.ResponseSignal) ([]SignalCluster, error) {
	indices := make([]int, len(signals))
	for i := range signals {
		indices[i] = i + 1
	}
	return []SignalCluster{{
		SignalText:    "cluster for " + dimension,
		Sentiment:     signals[0].Sentiment,
		MemberIndices: indices,
	}}, nil
}

func seedSurvey(t *testing.T, gdb *gorm.DB) *types.Survey {
	t.Helper()
	ctx := context.Background()
	surveyRepo := repos.NewSurveyRepo(gdb, testutil.Logger(t))
	survey, err := surveyRepo.Create(ctx, nil, &types.Survey{ID: uuid.New(), Title: "Quarterly Pulse"})
	if err != nil {
		t.Fatalf("seed survey: %v", err)
	}
	t.Cleanup(func() {
		for _, table := range []string{
			"narrative_report", "survey_analytics_snapshot", "session_insight",
			"aggregated_signal", "response_signal", "session_response",
			"feedback_session", "survey_theme",
		} {
			gdb.Exec(fmt.Sprintf("DELETE FROM %s WHERE survey_id = ?", table), survey.ID)
		}
		gdb.Exec("DELETE FROM survey WHERE id = ?", survey.ID)
	})
	return survey
}

func seedSignals(t *testing.T, gdb *gorm.DB, surveyID uuid.UUID, dimension string, sentiments ...string) []*types.ResponseSignal {
	t.Helper()
	signalRepo := repos.NewResponseSignalRepo(gdb, testutil.Logger(t))
	rows := make([]*types.ResponseSignal, 0, len(sentiments))
	for _, sentiment := range sentiments {
		rows = append(rows, &types.ResponseSignal{
			ID:         uuid.New(),
			ResponseID: uuid.New(),
			SurveyID:   surveyID,
			Dimension:  dimension,
			SignalText: "raw " + dimension + " signal",
			Sentiment:  sentiment,
			Intensity:  0.5,
		})
	}
	created, err := signalRepo.Create(context.Background(), nil, rows)
	if err != nil {
		t.Fatalf("seed signals: %v", err)
	}
	return created
}

func newAggregationService(t *testing.T, gdb *gorm.DB, clusterer Clusterer) (SignalAggregationService, repos.AggregatedSignalRepo) {
	t.Helper()
	log := testutil.Logger(t)
	aggregateRepo := repos.NewAggregatedSignalRepo(gdb, log)
	svc := NewSignalAggregationService(gdb, log, repos.NewSurveyRepo(gdb, log), repos.NewResponseSignalRepo(gdb, log), aggregateRepo, clusterer, nil)
	return svc, aggregateRepo
}

func TestAggregateSurveySignals_ReplacesPriorRun(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	survey := seedSurvey(t, gdb)
	seedSignals(t, gdb, survey.ID, "workload", types.SentimentNegative, types.SentimentNegative, types.SentimentNeutral)
	seedSignals(t, gdb, survey.ID, "leadership", types.SentimentPositive, types.SentimentPositive)

	svc, aggregateRepo := newAggregationService(t, gdb, &stubClusterer{cluster: oneClusterPerDimension})

	first, err := svc.AggregateSurveySignals(ctx, survey.ID)
	if err != nil {
		t.Fatalf("first run: %v", err)
	}
	if first.SignalsProcessed != 5 {
		t.Fatalf("signals processed = %d, want 5", first.SignalsProcessed)
	}
	if first.AggregatesCreated != 2 {
		t.Fatalf("aggregates created = %d, want 2", first.AggregatesCreated)
	}

	second, err := svc.AggregateSurveySignals(ctx, survey.ID)
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if second.AggregatesCreated != first.AggregatesCreated {
		t.Fatalf("rerun changed aggregate count: %d vs %d", second.AggregatesCreated, first.AggregatesCreated)
	}

	rows, err := aggregateRepo.GetBySurveyID(ctx, nil, survey.ID)
	if err != nil {
		t.Fatalf("load aggregates: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("stored aggregates = %d, want 2 (old run must be replaced)", len(rows))
	}

	voices := 0
	for _, agg := range rows {
		voices += agg.VoiceCount
	}
	if voices != 5 {
		t.Fatalf("total voice count = %d, want 5 (every signal lands in exactly one aggregate)", voices)
	}
}

func TestAggregateSurveySignals_WorkedExample(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	survey := seedSurvey(t, gdb)
	seedSignals(t, gdb, survey.ID, "workload", types.SentimentNegative, types.SentimentNegative, types.SentimentNeutral)
	seedSignals(t, gdb, survey.ID, "leadership", types.SentimentPositive, types.SentimentPositive)

	clusterer := &stubClusterer{cluster: func(ctx context.Context, dimension string, signals []*types.ResponseSignal) ([]SignalCluster, error) {
		indices := make([]int, len(signals))
		for i := range signals {
			indices[i] = i + 1
		}
		sentiment := types.SentimentNegative
		if dimension == "leadership" {
			sentiment = types.SentimentPositive
		}
		return []SignalCluster{{SignalText: dimension, Sentiment: sentiment, MemberIndices: indices}}, nil
	}}

	svc, aggregateRepo := newAggregationService(t, gdb, clusterer)
	if _, err := svc.AggregateSurveySignals(ctx, survey.ID); err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	rows, err := aggregateRepo.GetBySurveyID(ctx, nil, survey.ID)
	if err != nil {
		t.Fatalf("load aggregates: %v", err)
	}
	byDimension := map[string]*types.AggregatedSignal{}
	for _, agg := range rows {
		byDimension[agg.Dimension] = agg
	}

	workload := byDimension["workload"]
	if workload == nil || workload.VoiceCount != 3 || workload.AgreementPct != 67 {
		t.Fatalf("workload aggregate = %+v, want voice_count=3 agreement_pct=67", workload)
	}
	leadership := byDimension["leadership"]
	if leadership == nil || leadership.VoiceCount != 2 || leadership.AgreementPct != 100 {
		t.Fatalf("leadership aggregate = %+v, want voice_count=2 agreement_pct=100", leadership)
	}
}

func TestAggregateSurveySignals_DimensionFailureFallsBack(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	survey := seedSurvey(t, gdb)
	seedSignals(t, gdb, survey.ID, "workload", types.SentimentNegative, types.SentimentNegative)
	seedSignals(t, gdb, survey.ID, "leadership", types.SentimentPositive, types.SentimentPositive)

	clusterer := &stubClusterer{cluster: func(ctx context.Context, dimension string, signals []*types.ResponseSignal) ([]SignalCluster, error) {
		if dimension == "workload" {
			return nil, errors.New("oracle timeout")
		}
		return oneClusterPerDimension(ctx, dimension, signals)
	}}

	svc, aggregateRepo := newAggregationService(t, gdb, clusterer)
	result, err := svc.AggregateSurveySignals(ctx, survey.ID)
	if err != nil {
		t.Fatalf("run must survive a single-dimension failure: %v", err)
	}
	// 2 workload singletons + 1 leadership cluster.
	if result.AggregatesCreated != 3 {
		t.Fatalf("aggregates created = %d, want 3", result.AggregatesCreated)
	}

	rows, err := aggregateRepo.GetBySurveyID(ctx, nil, survey.ID)
	if err != nil {
		t.Fatalf("load aggregates: %v", err)
	}
	for _, agg := range rows {
		if agg.Dimension == "workload" {
			if agg.VoiceCount != 1 || agg.AgreementPct != 100 {
				t.Fatalf("workload fallback row = %+v, want singleton", agg)
			}
		}
	}
}

func TestAggregateSurveySignals_NoSignals(t *testing.T) {
	gdb := testutil.DB(t)
	ctx := context.Background()
	survey := seedSurvey(t, gdb)

	svc, aggregateRepo := newAggregationService(t, gdb, &stubClusterer{cluster: oneClusterPerDimension})
	result, err := svc.AggregateSurveySignals(ctx, survey.ID)
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if result.SignalsProcessed != 0 || result.AggregatesCreated != 0 {
		t.Fatalf("empty survey result = %+v, want zeroes", result)
	}
	rows, err := aggregateRepo.GetBySurveyID(ctx, nil, survey.ID)
	if err != nil {
		t.Fatalf("load aggregates: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("stored aggregates = %d, want 0", len(rows))
	}
}

func TestAggregateSurveySignals_SurveyNotFound(t *testing.T) {
	gdb := testutil.DB(t)
	svc, _ := newAggregationService(t, gdb, &stubClusterer{cluster: oneClusterPerDimension})
	_, err := svc.AggregateSurveySignals(context.Background(), uuid.New())
	if !errors.Is(err, pkgerrors.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
