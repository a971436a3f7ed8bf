package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/openpulse/openpulse-backend/internal/data/repos/testutil"
	types "github.com/openpulse/openpulse-backend/internal/domain"
)

func TestSessionInsightRepo_Ordering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewSessionInsightRepo(db, testutil.Logger(t))
	surveyID := uuid.New()
	sessionID := uuid.New()
	now := time.Now().UTC()

	makeInsight := func(session uuid.UUID, createdAt time.Time) *types.SessionInsight {
		return &types.SessionInsight{
			ID:                  uuid.New(),
			SessionID:           session,
			SurveyID:            surveyID,
			RootCause:           "cause",
			SentimentTrajectory: types.TrajectoryStable,
			KeyQuotes:           datatypes.JSON([]byte(`[]`)),
			RecommendedActions:  datatypes.JSON([]byte(`[]`)),
			CreatedAt:           createdAt,
		}
	}

	older := makeInsight(sessionID, now.Add(-time.Hour))
	newer := makeInsight(sessionID, now)
	other := makeInsight(uuid.New(), now.Add(-30*time.Minute))
	for _, row := range []*types.SessionInsight{older, newer, other} {
		if _, err := repo.Create(ctx, tx, row); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	bySession, err := repo.GetBySessionID(ctx, tx, sessionID)
	if err != nil {
		t.Fatalf("get by session: %v", err)
	}
	if len(bySession) != 2 {
		t.Fatalf("rows = %d, want 2", len(bySession))
	}
	if bySession[0].ID != newer.ID {
		t.Fatalf("newest insight must come first, got %s", bySession[0].ID)
	}

	bySurvey, err := repo.GetBySurveyID(ctx, tx, surveyID)
	if err != nil {
		t.Fatalf("get by survey: %v", err)
	}
	if len(bySurvey) != 3 {
		t.Fatalf("rows = %d, want 3", len(bySurvey))
	}
	// Within one session the newest row leads; sessions are grouped.
	for i := 1; i < len(bySurvey); i++ {
		prev, cur := bySurvey[i-1], bySurvey[i]
		if prev.SessionID == cur.SessionID && prev.CreatedAt.Before(cur.CreatedAt) {
			t.Fatalf("rows within session %s out of order", cur.SessionID)
		}
	}
}
