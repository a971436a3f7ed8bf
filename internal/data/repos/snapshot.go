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

type SurveyAnalyticsSnapshotRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.SurveyAnalyticsSnapshot) (*types.SurveyAnalyticsSnapshot, error)
	GetLatestBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (*types.SurveyAnalyticsSnapshot, error)
	GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.SurveyAnalyticsSnapshot, error)
}

type surveyAnalyticsSnapshotRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveyAnalyticsSnapshotRepo(db *gorm.DB, baseLog *logger.Logger) SurveyAnalyticsSnapshotRepo {
	return &surveyAnalyticsSnapshotRepo{db: db, log: baseLog.With("repo", "SurveyAnalyticsSnapshotRepo")}
}

func (r *surveyAnalyticsSnapshotRepo) Create(ctx context.Context, tx *gorm.DB, row *types.SurveyAnalyticsSnapshot) (*types.SurveyAnalyticsSnapshot, error) {
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

func (r *surveyAnalyticsSnapshotRepo) GetLatestBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (*types.SurveyAnalyticsSnapshot, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.SurveyAnalyticsSnapshot
	if err := t.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("created_at DESC").
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *surveyAnalyticsSnapshotRepo) GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.SurveyAnalyticsSnapshot, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.SurveyAnalyticsSnapshot
	if err := t.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("created_at DESC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
