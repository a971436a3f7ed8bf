package repos

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/openpulse/openpulse-backend/internal/data/repos/testutil"
	types "github.com/openpulse/openpulse-backend/internal/domain"
)

func TestAggregatedSignalRepo_ReplaceCycle(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewAggregatedSignalRepo(db, testutil.Logger(t))
	surveyID := uuid.New()

	makeRow := func(dimension string) *types.AggregatedSignal {
		return &types.AggregatedSignal{
			ID:           uuid.New(),
			SurveyID:     surveyID,
			SignalText:   "signal",
			Dimension:    dimension,
			Sentiment:    types.SentimentNegative,
			VoiceCount:   1,
			AgreementPct: 100,
			EvidenceIDs:  datatypes.JSON([]byte(`[]`)),
		}
	}

	if _, err := repo.Create(ctx, tx, []*types.AggregatedSignal{makeRow("workload"), makeRow("culture"), makeRow("culture")}); err != nil {
		t.Fatalf("create: %v", err)
	}

	rows, err := repo.GetBySurveyID(ctx, tx, surveyID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %d, want 3", len(rows))
	}
	if rows[0].Dimension != "culture" {
		t.Fatalf("rows must come back ordered by dimension, got %q first", rows[0].Dimension)
	}

	if err := repo.DeleteBySurveyID(ctx, tx, surveyID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows, err = repo.GetBySurveyID(ctx, tx, surveyID)
	if err != nil {
		t.Fatalf("get after delete: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("rows after delete = %d, want 0", len(rows))
	}

	if _, err := repo.Create(ctx, tx, []*types.AggregatedSignal{makeRow("workload")}); err != nil {
		t.Fatalf("create after delete: %v", err)
	}
}
