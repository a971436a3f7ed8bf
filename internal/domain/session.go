package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
	SessionStatusAbandoned = "abandoned"
)

type FeedbackSession struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SurveyID uuid.UUID `gorm:"type:uuid;not null;index:idx_session_survey_status,priority:1" json:"survey_id"`
	Status   string    `gorm:"not null;default:'active';index:idx_session_survey_status,priority:2" json:"status"`

	StartedAt   time.Time  `gorm:"not null;default:now()" json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null;default:now()" json:"updated_at"`
}

func (FeedbackSession) TableName() string { return "feedback_session" }

// SessionResponse is one turn of a feedback conversation, captured upstream.
// SentimentScore and UrgencyScore come from the per-response scoring stage
// and are trusted as-is.
type SessionResponse struct {
	ID        uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID  `gorm:"type:uuid;not null;index" json:"session_id"`
	SurveyID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"survey_id"`
	ThemeID   *uuid.UUID `gorm:"type:uuid;index" json:"theme_id,omitempty"`
	Position  int        `gorm:"not null;default:0" json:"position"`

	Content        string         `gorm:"type:text;not null" json:"content"`
	SentimentScore float64        `gorm:"not null;default:0" json:"sentiment_score"`
	UrgencyScore   float64        `gorm:"not null;default:0" json:"urgency_score"`
	Analysis       datatypes.JSON `gorm:"type:jsonb" json:"analysis,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (SessionResponse) TableName() string { return "session_response" }
