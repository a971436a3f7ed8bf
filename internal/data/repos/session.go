package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openpulse/openpulse-backend/internal/domain"
	pkgerrors "github.com/openpulse/openpulse-backend/internal/pkg/errors"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
)

type FeedbackSessionRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.FeedbackSession) (*types.FeedbackSession, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FeedbackSession, error)
	GetCompletedBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.FeedbackSession, error)
}

type feedbackSessionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewFeedbackSessionRepo(db *gorm.DB, baseLog *logger.Logger) FeedbackSessionRepo {
	return &feedbackSessionRepo{db: db, log: baseLog.With("repo", "FeedbackSessionRepo")}
}

func (r *feedbackSessionRepo) Create(ctx context.Context, tx *gorm.DB, row *types.FeedbackSession) (*types.FeedbackSession, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := t.WithContext(ctx).Create(row).Error; err != nil {
		return nil, err
	}
	return row, nil
}

func (r *feedbackSessionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.FeedbackSession, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.FeedbackSession
	if err := t.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *feedbackSessionRepo) GetCompletedBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.FeedbackSession, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.FeedbackSession
	if err := t.WithContext(ctx).
		Where("survey_id = ? AND status = ?", surveyID, types.SessionStatusCompleted).
		Order("completed_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
