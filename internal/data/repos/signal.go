package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openpulse/openpulse-backend/internal/domain"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
)

type ResponseSignalRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.ResponseSignal) ([]*types.ResponseSignal, error)
	GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.ResponseSignal, error)
}

type responseSignalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResponseSignalRepo(db *gorm.DB, baseLog *logger.Logger) ResponseSignalRepo {
	return &responseSignalRepo{db: db, log: baseLog.With("repo", "ResponseSignalRepo")}
}

func (r *responseSignalRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.ResponseSignal) ([]*types.ResponseSignal, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.ResponseSignal{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *responseSignalRepo) GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.ResponseSignal, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.ResponseSignal
	if err := t.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("dimension ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
