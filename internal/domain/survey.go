package domain

import (
	"time"

	"github.com/google/uuid"
)

type Survey struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `gorm:"column:description" json:"description,omitempty"`
	Status      string    `gorm:"not null;default:'active';index" json:"status"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (Survey) TableName() string { return "survey" }

// SurveyTheme is a feedback axis configured on the survey (e.g. "workload").
type SurveyTheme struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SurveyID    uuid.UUID `gorm:"type:uuid;not null;index" json:"survey_id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `gorm:"column:description" json:"description,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (SurveyTheme) TableName() string { return "survey_theme" }
