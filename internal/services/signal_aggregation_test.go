package services

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	types "github.com/openpulse/openpulse-backend/internal/domain"
)

func makeSignal(dimension, sentiment string, intensity float64) *types.ResponseSignal {
	return &types.ResponseSignal{
		ID:         uuid.New(),
		ResponseID: uuid.New(),
		SurveyID:   uuid.New(),
		Dimension:  dimension,
		SignalText: "signal",
		Sentiment:  sentiment,
		Intensity:  intensity,
	}
}

func evidenceIDs(t *testing.T, agg *types.AggregatedSignal) []uuid.UUID {
	t.Helper()
	var ids []uuid.UUID
	require.NoError(t, json.Unmarshal(agg.EvidenceIDs, &ids))
	return ids
}

func TestAgreementPct(t *testing.T) {
	require.Equal(t, 67, agreementPct(2, 3))
	require.Equal(t, 100, agreementPct(2, 2))
	require.Equal(t, 50, agreementPct(1, 2))
	require.Equal(t, 33, agreementPct(1, 3))
	require.Equal(t, 0, agreementPct(0, 3))
	require.Equal(t, 0, agreementPct(1, 0))
}

func TestRound1(t *testing.T) {
	require.Equal(t, 0.8, round1(0.75))
	require.Equal(t, 0.7, round1(0.7333333))
	require.Equal(t, 1.0, round1(0.96))
}

func TestBuildClusterAggregates_Workload(t *testing.T) {
	surveyID := uuid.New()
	group := []*types.ResponseSignal{
		makeSignal("workload", types.SentimentNegative, 0.9),
		makeSignal("workload", types.SentimentNegative, 0.8),
		makeSignal("workload", types.SentimentNeutral, 0.5),
	}
	clusters := []SignalCluster{{
		SignalText:    "sustained overload across the team",
		Facet:         "capacity",
		Sentiment:     types.SentimentNegative,
		MemberIndices: []int{1, 2, 3},
	}}

	rows := buildClusterAggregates(surveyID, "workload", group, clusters)
	require.Len(t, rows, 1)

	agg := rows[0]
	require.Equal(t, 3, agg.VoiceCount)
	require.Equal(t, 67, agg.AgreementPct)
	require.Equal(t, 0.7, agg.AvgIntensity)
	require.Equal(t, surveyID, agg.SurveyID)
	require.Equal(t, "workload", agg.Dimension)

	ids := evidenceIDs(t, agg)
	require.Len(t, ids, agg.VoiceCount)
	require.ElementsMatch(t, ids, []uuid.UUID{group[0].ResponseID, group[1].ResponseID, group[2].ResponseID})
}

func TestBuildClusterAggregates_FullAgreement(t *testing.T) {
	surveyID := uuid.New()
	group := []*types.ResponseSignal{
		makeSignal("leadership", types.SentimentPositive, 0.6),
		makeSignal("leadership", types.SentimentPositive, 0.7),
	}
	clusters := []SignalCluster{{
		SignalText:    "managers are trusted",
		Sentiment:     types.SentimentPositive,
		MemberIndices: []int{1, 2},
	}}

	rows := buildClusterAggregates(surveyID, "leadership", group, clusters)
	require.Len(t, rows, 1)
	require.Equal(t, 2, rows[0].VoiceCount)
	require.Equal(t, 100, rows[0].AgreementPct)
	require.Equal(t, 0.7, rows[0].AvgIntensity)
}

func TestBuildClusterAggregates_DiscardsBadIndices(t *testing.T) {
	surveyID := uuid.New()
	group := []*types.ResponseSignal{
		makeSignal("culture", types.SentimentMixed, 0.4),
		makeSignal("culture", types.SentimentMixed, 0.6),
	}
	clusters := []SignalCluster{
		{
			SignalText:    "ambivalence about the reorg",
			Sentiment:     types.SentimentMixed,
			MemberIndices: []int{0, 1, 1, 2, 3, 99},
		},
		{
			SignalText:    "phantom cluster",
			Sentiment:     types.SentimentNeutral,
			MemberIndices: []int{-1, 7},
		},
	}

	rows := buildClusterAggregates(surveyID, "culture", group, clusters)
	require.Len(t, rows, 1, "cluster with no valid members must be skipped")
	require.Equal(t, 2, rows[0].VoiceCount, "out-of-range and duplicate indices must be discarded")
	require.Len(t, evidenceIDs(t, rows[0]), 2)
}

func TestSingletonAggregates(t *testing.T) {
	surveyID := uuid.New()
	group := []*types.ResponseSignal{
		makeSignal("process", types.SentimentNegative, 0.55),
		makeSignal("process", types.SentimentPositive, 0.21),
	}

	rows := singletonAggregates(surveyID, "process", group)
	require.Len(t, rows, 2)
	for i, agg := range rows {
		require.Equal(t, 1, agg.VoiceCount)
		require.Equal(t, 100, agg.AgreementPct)
		require.Equal(t, group[i].Sentiment, agg.Sentiment)
		require.Equal(t, round1(group[i].Intensity), agg.AvgIntensity)
		require.Equal(t, []uuid.UUID{group[i].ResponseID}, evidenceIDs(t, agg))
	}
}

func TestBuildClusterAggregates_PartitionConservesSignals(t *testing.T) {
	surveyID := uuid.New()
	group := make([]*types.ResponseSignal, 6)
	for i := range group {
		group[i] = makeSignal("communication", types.SentimentNegative, 0.5)
	}
	clusters := []SignalCluster{
		{SignalText: "a", Sentiment: types.SentimentNegative, MemberIndices: []int{1, 2, 3}},
		{SignalText: "b", Sentiment: types.SentimentNegative, MemberIndices: []int{4, 5}},
		{SignalText: "c", Sentiment: types.SentimentNegative, MemberIndices: []int{6}},
	}

	rows := buildClusterAggregates(surveyID, "communication", group, clusters)
	total := 0
	for _, agg := range rows {
		total += agg.VoiceCount
		require.Len(t, evidenceIDs(t, agg), agg.VoiceCount)
	}
	require.Equal(t, len(group), total)
}
