package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openpulse/openpulse-backend/internal/domain"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
)

type SurveyThemeRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.SurveyTheme) ([]*types.SurveyTheme, error)
	GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.SurveyTheme, error)
}

type surveyThemeRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveyThemeRepo(db *gorm.DB, baseLog *logger.Logger) SurveyThemeRepo {
	return &surveyThemeRepo{db: db, log: baseLog.With("repo", "SurveyThemeRepo")}
}

func (r *surveyThemeRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.SurveyTheme) ([]*types.SurveyTheme, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.SurveyTheme{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *surveyThemeRepo) GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.SurveyTheme, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.SurveyTheme
	if err := t.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
