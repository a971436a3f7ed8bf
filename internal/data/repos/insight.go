package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openpulse/openpulse-backend/internal/domain"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
)

type SessionInsightRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.SessionInsight) (*types.SessionInsight, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionInsight, error)
	GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.SessionInsight, error)
}

type sessionInsightRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionInsightRepo(db *gorm.DB, baseLog *logger.Logger) SessionInsightRepo {
	return &sessionInsightRepo{db: db, log: baseLog.With("repo", "SessionInsightRepo")}
}

func (r *sessionInsightRepo) Create(ctx context.Context, tx *gorm.DB, row *types.SessionInsight) (*types.SessionInsight, error) {
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

func (r *sessionInsightRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionInsight, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.SessionInsight
	if err := t.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionInsightRepo) GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.SessionInsight, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.SessionInsight
	if err := t.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("session_id ASC, created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
