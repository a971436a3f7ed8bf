package prompts

import (
	"fmt"
	"strings"

	types "github.com/openpulse/openpulse-backend/internal/domain"
)

// ClusterSignals builds the per-dimension clustering request. Signals are
// presented 1-indexed; the oracle returns 2-5 clusters referencing members by
// those indices.
func ClusterSignals(dimension string, signals []*types.ResponseSignal) Prompt {
	var listing strings.Builder
	for i, sig := range signals {
		fmt.Fprintf(&listing, "%d. [facet=%s intensity=%.1f sentiment=%s] %s\n",
			i+1, sig.Facet, sig.Intensity, sig.Sentiment, strings.TrimSpace(sig.SignalText))
	}

	system := "You cluster atomic feedback signals that all belong to one feedback dimension. " +
		"Partition the numbered signals into 2-5 clusters of signals that express the same underlying observation.\n\n" +
		"Rules:\n" +
		"- Every signal index belongs to exactly one cluster. Do not drop or duplicate indices.\n" +
		"- aggregated_signal is a synthesized 8-15 word description of what the cluster's members collectively say.\n" +
		"- facet is the dominant facet among the members; sentiment is the dominant sentiment.\n" +
		"- Indices are 1-based and refer to the numbered list.\n"

	user := fmt.Sprintf(
		"DIMENSION: %s\nSIGNALS:\n%s\nReturn JSON only.\n",
		dimension,
		listing.String(),
	)

	return Prompt{
		System:     system,
		User:       user,
		SchemaName: "signal_clusters",
		Schema:     signalClustersSchema(),
	}
}

func signalClustersSchema() map[string]any {
	cluster := ObjectSchema(map[string]any{
		"aggregated_signal": StringSchema(),
		"facet":             StringSchema(),
		"sentiment": EnumSchema(
			types.SentimentPositive,
			types.SentimentNegative,
			types.SentimentNeutral,
			types.SentimentMixed,
		),
		"member_indices": ArraySchema(map[string]any{"type": "integer", "minimum": 1}, 1, 0),
	}, []string{"aggregated_signal", "facet", "sentiment", "member_indices"})

	return ObjectSchema(map[string]any{
		"clusters": ArraySchema(cluster, 2, 5),
	}, []string{"clusters"})
}
