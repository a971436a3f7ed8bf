package repos

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/openpulse/openpulse-backend/internal/data/repos/testutil"
	types "github.com/openpulse/openpulse-backend/internal/domain"
)

func TestSessionResponseRepo_Ordering(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)

	ctx := context.Background()
	repo := NewSessionResponseRepo(db, testutil.Logger(t))
	surveyID := uuid.New()
	sessionID := uuid.New()
	now := time.Now().UTC()

	rows := []*types.SessionResponse{
		{ID: uuid.New(), SessionID: sessionID, SurveyID: surveyID, Position: 2, Content: "third", CreatedAt: now},
		{ID: uuid.New(), SessionID: sessionID, SurveyID: surveyID, Position: 0, Content: "first", CreatedAt: now.Add(-2 * time.Minute)},
		{ID: uuid.New(), SessionID: sessionID, SurveyID: surveyID, Position: 1, Content: "second", CreatedAt: now.Add(-time.Minute)},
	}
	if _, err := repo.Create(ctx, tx, rows); err != nil {
		t.Fatalf("create: %v", err)
	}

	bySession, err := repo.GetBySessionID(ctx, tx, sessionID)
	if err != nil {
		t.Fatalf("get by session: %v", err)
	}
	if len(bySession) != 3 {
		t.Fatalf("rows = %d, want 3", len(bySession))
	}
	for i, want := range []string{"first", "second", "third"} {
		if bySession[i].Content != want {
			t.Fatalf("row %d = %q, want %q (conversation order)", i, bySession[i].Content, want)
		}
	}

	recent, err := repo.GetRecentBySurveyID(ctx, tx, surveyID, 2)
	if err != nil {
		t.Fatalf("get recent: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("recent rows = %d, want 2", len(recent))
	}
	if recent[0].Content != "third" {
		t.Fatalf("most recent first, got %q", recent[0].Content)
	}

	byIDs, err := repo.GetByIDs(ctx, tx, []uuid.UUID{rows[0].ID, rows[1].ID})
	if err != nil {
		t.Fatalf("get by ids: %v", err)
	}
	if len(byIDs) != 2 {
		t.Fatalf("byIDs rows = %d, want 2", len(byIDs))
	}
}
