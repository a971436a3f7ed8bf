package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/openpulse/openpulse-backend/internal/domain"
	"github.com/openpulse/openpulse-backend/internal/pkg/logger"
)

type SessionResponseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*types.SessionResponse) ([]*types.SessionResponse, error)
	GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionResponse, error)
	GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.SessionResponse, error)
	GetRecentBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID, limit int) ([]*types.SessionResponse, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SessionResponse, error)
}

type sessionResponseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSessionResponseRepo(db *gorm.DB, baseLog *logger.Logger) SessionResponseRepo {
	return &sessionResponseRepo{db: db, log: baseLog.With("repo", "SessionResponseRepo")}
}

func (r *sessionResponseRepo) Create(ctx context.Context, tx *gorm.DB, rows []*types.SessionResponse) ([]*types.SessionResponse, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if len(rows) == 0 {
		return []*types.SessionResponse{}, nil
	}
	if err := t.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *sessionResponseRepo) GetBySessionID(ctx context.Context, tx *gorm.DB, sessionID uuid.UUID) ([]*types.SessionResponse, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.SessionResponse
	if err := t.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("position ASC, created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionResponseRepo) GetBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID) ([]*types.SessionResponse, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.SessionResponse
	if err := t.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("created_at ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionResponseRepo) GetRecentBySurveyID(ctx context.Context, tx *gorm.DB, surveyID uuid.UUID, limit int) ([]*types.SessionResponse, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	if limit <= 0 {
		limit = 40
	}
	var out []*types.SessionResponse
	if err := t.WithContext(ctx).
		Where("survey_id = ?", surveyID).
		Order("created_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sessionResponseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.SessionResponse, error) {
	t := tx
	if t == nil {
		t = r.db
	}
	var out []*types.SessionResponse
	if len(ids) == 0 {
		return out, nil
	}
	if err := t.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
