package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/openpulse/openpulse-backend/internal/data/repos"
	types "github.com/openpulse/openpulse-backend/internal/domain"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
	"github.com/openpulse/openpulse-backend/internal/sse"
)

type SignalAggregationService interface {
	AggregateSurveySignals(ctx context.Context, surveyID uuid.UUID) (*SignalAggregationResult, error)
}

type SignalAggregationResult struct {
	SurveyID          uuid.UUID `json:"survey_id"`
	SignalsProcessed  int       `json:"signals_processed"`
	AggregatesCreated int       `json:"aggregates_created"`
	Dimensions        []string  `json:"dimensions"`
}

// maxConcurrentDimensions bounds the per-dimension oracle fan-out.
const maxConcurrentDimensions = 4

type signalAggregationService struct {
	db            *gorm.DB
	log           *logger.Logger
	surveyRepo    repos.SurveyRepo
	signalRepo    repos.ResponseSignalRepo
	aggregateRepo repos.AggregatedSignalRepo
	clusterer     Clusterer
	events        EventPublisher
}

func NewSignalAggregationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	surveyRepo repos.SurveyRepo,
	signalRepo repos.ResponseSignalRepo,
	aggregateRepo repos.AggregatedSignalRepo,
	clusterer Clusterer,
	events EventPublisher,
) SignalAggregationService {
	return &signalAggregationService{
		db:            db,
		log:           baseLog.With("service", "SignalAggregationService"),
		surveyRepo:    surveyRepo,
		signalRepo:    signalRepo,
		aggregateRepo: aggregateRepo,
		clusterer:     clusterer,
		events:        events,
	}
}

func (s *signalAggregationService) AggregateSurveySignals(ctx context.Context, surveyID uuid.UUID) (*SignalAggregationResult, error) {
	ctx, span := otel.Tracer("services").Start(ctx, "SignalAggregation.AggregateSurveySignals")
	defer span.End()
	span.SetAttributes(attribute.String("survey_id", surveyID.String()))

	if _, err := s.surveyRepo.GetByID(ctx, nil, surveyID); err != nil {
		return nil, fmt.Errorf("load survey %s: %w", surveyID, err)
	}

	signals, err := s.signalRepo.GetBySurveyID(ctx, nil, surveyID)
	if err != nil {
		return nil, fmt.Errorf("load signals for survey %s: %w", surveyID, err)
	}
	if len(signals) == 0 {
		s.log.Info("survey has no signals; nothing to aggregate", "survey_id", surveyID)
		return &SignalAggregationResult{SurveyID: surveyID, Dimensions: []string{}}, nil
	}

	groups := map[string][]*types.ResponseSignal{}
	for _, sig := range signals {
		groups[sig.Dimension] = append(groups[sig.Dimension], sig)
	}
	dimensions := make([]string, 0, len(groups))
	for dim := range groups {
		dimensions = append(dimensions, dim)
	}
	sort.Strings(dimensions)

	// Dimension groups share no mutable state; each one writes only its own
	// result slot.
	results := make([][]*types.AggregatedSignal, len(dimensions))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentDimensions)
	for i, dim := range dimensions {
		g.Go(func() error {
			if gctx.Err() != nil {
				return gctx.Err()
			}
			results[i] = s.aggregateDimension(gctx, surveyID, dim, groups[dim])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	aggregates := make([]*types.AggregatedSignal, 0, len(signals))
	for _, rows := range results {
		aggregates = append(aggregates, rows...)
	}

	// Replace the survey's aggregate set in one transaction so concurrent
	// readers never observe an empty window.
	if err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.aggregateRepo.DeleteBySurveyID(ctx, tx, surveyID); err != nil {
			return err
		}
		_, err := s.aggregateRepo.Create(ctx, tx, aggregates)
		return err
	}); err != nil {
		return nil, fmt.Errorf("replace aggregates for survey %s: %w", surveyID, err)
	}

	s.log.Info("survey signals aggregated",
		"survey_id", surveyID,
		"signals", len(signals),
		"aggregates", len(aggregates),
		"dimensions", len(dimensions),
	)
	publishEvent(ctx, s.events, sse.Message{
		Channel: sse.SurveyChannel(surveyID),
		Event:   sse.EventSignalAggregationCompleted,
		Data: map[string]any{
			"signals_processed":  len(signals),
			"aggregates_created": len(aggregates),
		},
	})

	return &SignalAggregationResult{
		SurveyID:          surveyID,
		SignalsProcessed:  len(signals),
		AggregatesCreated: len(aggregates),
		Dimensions:        dimensions,
	}, nil
}

// aggregateDimension clusters one dimension group. Oracle failures degrade to
// singleton aggregates for this dimension only; they never abort the run.
func (s *signalAggregationService) aggregateDimension(ctx context.Context, surveyID uuid.UUID, dimension string, group []*types.ResponseSignal) []*types.AggregatedSignal {
	if len(group) < 2 {
		return singletonAggregates(surveyID, dimension, group)
	}

	clusters, err := s.clusterer.Cluster(ctx, dimension, group)
	if err != nil {
		s.log.Warn("dimension clustering failed; falling back to singletons",
			"survey_id", surveyID,
			"dimension", dimension,
			"signals", len(group),
			"error", err,
		)
		return singletonAggregates(surveyID, dimension, group)
	}

	rows := buildClusterAggregates(surveyID, dimension, group, clusters)
	if len(rows) == 0 {
		s.log.Warn("dimension clustering returned no usable clusters; falling back to singletons",
			"survey_id", surveyID,
			"dimension", dimension,
		)
		return singletonAggregates(surveyID, dimension, group)
	}
	return rows
}

// singletonAggregates promotes each signal to its own aggregate.
func singletonAggregates(surveyID uuid.UUID, dimension string, group []*types.ResponseSignal) []*types.AggregatedSignal {
	out := make([]*types.AggregatedSignal, 0, len(group))
	for _, sig := range group {
		out = append(out, &types.AggregatedSignal{
			ID:           uuid.New(),
			SurveyID:     surveyID,
			SignalText:   sig.SignalText,
			Dimension:    dimension,
			Facet:        sig.Facet,
			Sentiment:    sig.Sentiment,
			VoiceCount:   1,
			AgreementPct: 100,
			AvgIntensity: round1(sig.Intensity),
			EvidenceIDs:  evidenceJSON([]uuid.UUID{sig.ResponseID}),
		})
	}
	return out
}

// buildClusterAggregates turns a returned partition into aggregate rows.
// Indices outside [1, len(group)] are discarded; clusters left without valid
// members are skipped.
func buildClusterAggregates(surveyID uuid.UUID, dimension string, group []*types.ResponseSignal, clusters []SignalCluster) []*types.AggregatedSignal {
	out := make([]*types.AggregatedSignal, 0, len(clusters))
	for _, cluster := range clusters {
		seen := map[int]bool{}
		members := make([]*types.ResponseSignal, 0, len(cluster.MemberIndices))
		for _, idx := range cluster.MemberIndices {
			if idx < 1 || idx > len(group) || seen[idx] {
				continue
			}
			seen[idx] = true
			members = append(members, group[idx-1])
		}
		if len(members) == 0 {
			continue
		}

		var intensitySum float64
		matching := 0
		evidence := make([]uuid.UUID, 0, len(members))
		for _, m := range members {
			intensitySum += m.Intensity
			if m.Sentiment == cluster.Sentiment {
				matching++
			}
			evidence = append(evidence, m.ResponseID)
		}

		out = append(out, &types.AggregatedSignal{
			ID:           uuid.New(),
			SurveyID:     surveyID,
			SignalText:   cluster.SignalText,
			Dimension:    dimension,
			Facet:        cluster.Facet,
			Sentiment:    cluster.Sentiment,
			VoiceCount:   len(members),
			AgreementPct: agreementPct(matching, len(members)),
			AvgIntensity: round1(intensitySum / float64(len(members))),
			EvidenceIDs:  evidenceJSON(evidence),
		})
	}
	return out
}

func agreementPct(matching, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(matching) / float64(total)))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func evidenceJSON(ids []uuid.UUID) datatypes.JSON {
	raw, _ := json.Marshal(ids)
	return datatypes.JSON(raw)
}
