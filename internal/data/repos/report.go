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

type NarrativeReportRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.NarrativeReport) (*types.NarrativeReport, error)
	GetLatestBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (*types.NarrativeReport, error)
	// DemoteBySurveyID clears is_latest on every report row for the survey.
	DemoteBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) error
	CountLatestBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (int64, error)
}

type narrativeReportRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewNarrativeReportRepo(db *gorm.DB, baseLog *logger.Logger) NarrativeReportRepo {
	return &narrativeReportRepo{db: db, log: baseLog.With("repo", "NarrativeReportRepo")}
}

func (r *narrativeReportRepo) Create(ctx context.Context, tx *gorm.DB, row *types.NarrativeReport) (*types.NarrativeReport, error) {
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

func (r *narrativeReportRepo) GetLatestBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (*types.NarrativeReport, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.NarrativeReport
	if err := t.WithContext(ctx).
		Where("survey_id = ? AND is_latest = ?", surveyID, true).
		Order("created_at DESC").
		First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}

func (r *narrativeReportRepo) DemoteBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) error {
	t := tx
	if t == nil {
		t = r.db
	}
	return t.WithContext(ctx).
		Model(&types.NarrativeReport{}).
		Where("survey_id = ? AND is_latest = ?", surveyID, true).
		Update("is_latest", false).Error
}

func (r *narrativeReportRepo) CountLatestBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) (int64, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var n int64
	if err := t.WithContext(ctx).
		Model(&types.NarrativeReport{}).
		Where("survey_id = ? AND is_latest = ?", surveyID, true).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
