package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/openpulse/openpulse-backend/internal/data/repos/testutil"
	types "github.com/openpulse/openpulse-backend/internal/domain"
)

func TestOracleClusterer_ParsesPartition(t *testing.T) {
	ai := &stubAI{generateJSON: func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
		require.Equal(t, "signal_clusters", schemaName)
		return map[string]any{
			"clusters": []any{
				map[string]any{
					"aggregated_signal": "meeting load crowds out focus time",
					"facet":             "meetings",
					"sentiment":         types.SentimentNegative,
					"member_indices":    []any{float64(1), float64(3)},
				},
				map[string]any{
					"aggregated_signal": "sprint cadence feels sustainable",
					"facet":             "pacing",
					"sentiment":         types.SentimentPositive,
					"member_indices":    []any{float64(2)},
				},
			},
		}, nil
	}}

	clusterer := NewOracleClusterer(testutil.Logger(t), ai)
	group := []*types.ResponseSignal{
		makeSignal("workload", types.SentimentNegative, 0.8),
		makeSignal("workload", types.SentimentPositive, 0.3),
		makeSignal("workload", types.SentimentNegative, 0.7),
	}

	clusters, err := clusterer.Cluster(context.Background(), "workload", group)
	require.NoError(t, err)
	require.Len(t, clusters, 2)
	require.Equal(t, []int{1, 3}, clusters[0].MemberIndices)
	require.Equal(t, types.SentimentPositive, clusters[1].Sentiment)
}

func TestOracleClusterer_RejectsBadPayloads(t *testing.T) {
	cases := map[string]map[string]any{
		"empty partition": {"clusters": []any{}},
		"missing text": {"clusters": []any{
			map[string]any{"facet": "f", "sentiment": types.SentimentNeutral, "member_indices": []any{float64(1)}},
		}},
		"bad sentiment": {"clusters": []any{
			map[string]any{"aggregated_signal": "s", "facet": "f", "sentiment": "angry", "member_indices": []any{float64(1)}},
		}},
	}
	for name, payload := range cases {
		t.Run(name, func(t *testing.T) {
			ai := &stubAI{generateJSON: func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
				return payload, nil
			}}
			clusterer := NewOracleClusterer(testutil.Logger(t), ai)
			_, err := clusterer.Cluster(context.Background(), "workload", []*types.ResponseSignal{makeSignal("workload", types.SentimentNeutral, 0.5)})
			require.Error(t, err)
		})
	}
}

func TestOracleClusterer_PropagatesOracleError(t *testing.T) {
	ai := &stubAI{generateJSON: func(ctx context.Context, system, user, schemaName string, schema map[string]any) (map[string]any, error) {
		return nil, errors.New("timeout")
	}}
	clusterer := NewOracleClusterer(testutil.Logger(t), ai)
	_, err := clusterer.Cluster(context.Background(), "workload", []*types.ResponseSignal{makeSignal("workload", types.SentimentNeutral, 0.5)})
	require.Error(t, err)
}
