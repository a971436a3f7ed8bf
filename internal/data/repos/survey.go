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

type SurveyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, row *types.Survey) (*types.Survey, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Survey, error)
}

type surveyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSurveyRepo(db *gorm.DB, baseLog *logger.Logger) SurveyRepo {
	return &surveyRepo{db: db, log: baseLog.With("repo", "SurveyRepo")}
}

func (r *surveyRepo) Create(ctx context.Context, tx *gorm.DB, row *types.Survey) (*types.Survey, error) {
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

func (r *surveyRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Survey, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out types.Survey
	if err := t.WithContext(ctx).First(&out, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &out, nil
}
