package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openpulse/openpulse-backend/internal/domain"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
)

type AggregatedSignalRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.AggregatedSignal) ([]*types.AggregatedSignal, error)
	GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.AggregatedSignal, error)
	DeleteBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) error
}

type aggregatedSignalRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewAggregatedSignalRepo(db *gorm.DB, baseLog *logger.Logger) AggregatedSignalRepo {
	return &aggregatedSignalRepo{db: db, log: baseLog.With("repo", "AggregatedSignalRepo")}
}

func (r *aggregatedSignalRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.AggregatedSignal) ([]*types.AggregatedSignal, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.AggregatedSignal{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *aggregatedSignalRepo) GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.AggregatedSignal, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.AggregatedSignal
	if err := t.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("dimension ASC, voice_count DESC, signal_text ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *aggregatedSignalRepo) DeleteBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).Where("survey_id = ?", surveyID).Delete(&types.AggregatedSignal{}).Error
}
