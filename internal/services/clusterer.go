package services

import (
	"context"
	"fmt"

	"github.com/openpulse/openpulse-backend/internal/analysis/prompts"
	types "github.com/openpulse/openpulse-backend/internal/domain"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
)

// SignalCluster is one partition cell returned by the clustering oracle.
// MemberIndices are 1-based positions into the submitted signal group.
type SignalCluster struct {
	SignalText    string
	Facet         string
	Sentiment     string
	MemberIndices []int
}

// Clusterer partitions a dimension group of signals. Production uses the
// oracle; tests substitute deterministic stubs. The oracle legitimately
// produces different partitions across runs on identical input.
type Clusterer interface {
	Cluster(ctx context.Context, dimension string, signals []*types.ResponseSignal) ([]SignalCluster, error)
}

type oracleClusterer struct {
	log *logger.Logger
	ai  AIClient
}

func NewOracleClusterer(baseLog *logger.Logger, ai AIClient) Clusterer {
	return &oracleClusterer{
		log: baseLog.With("service", "OracleClusterer"),
		ai:  ai,
	}
}

func (c *oracleClusterer) Cluster(ctx context.Context, dimension string, signals []*types.ResponseSignal) ([]SignalCluster, error) {
	prompt := prompts.ClusterSignals(dimension, signals)
	obj, err := c.ai.GenerateJSON(ctx, prompt.System, prompt.User, prompt.SchemaName, prompt.Schema)
	if err != nil {
		return nil, fmt.Errorf("clustering oracle: %w", err)
	}

	rawClusters, err := payloadObjectSlice(obj, "clusters")
	if err != nil {
		return nil, fmt.Errorf("clustering payload: %v", err)
	}
	if len(rawClusters) == 0 {
		return nil, fmt.Errorf("clustering payload: empty partition")
	}

	out := make([]SignalCluster, 0, len(rawClusters))
	for i, raw := range rawClusters {
		text, err := payloadString(raw, "aggregated_signal")
		if err != nil {
			return nil, fmt.Errorf("clusters[%d]: %v", i, err)
		}
		facet, err := payloadString(raw, "facet")
		if err != nil {
			return nil, fmt.Errorf("clusters[%d]: %v", i, err)
		}
		sentiment, err := payloadString(raw, "sentiment")
		if err != nil {
			return nil, fmt.Errorf("clusters[%d]: %v", i, err)
		}
		if !types.ValidSentiment(sentiment) {
			return nil, fmt.Errorf("clusters[%d]: sentiment %q outside enum", i, sentiment)
		}
		indices, err := payloadIntSlice(raw, "member_indices")
		if err != nil {
			return nil, fmt.Errorf("clusters[%d]: %v", i, err)
		}
		out = append(out, SignalCluster{
			SignalText:    text,
			Facet:         facet,
			Sentiment:     sentiment,
			MemberIndices: indices,
		})
	}
	return out, nil
}
