package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	TrajectoryImproving = "improving"
	TrajectoryDeclining = "declining"
	TrajectoryStable    = "stable"
	TrajectoryMixed     = "mixed"
)

func ValidTrajectory(s string) bool {
	switch s {
	case TrajectoryImproving, TrajectoryDeclining, TrajectoryStable, TrajectoryMixed:
		return true
	}
	return false
}

// RecommendedAction is the JSON shape stored in SessionInsight.RecommendedActions.
type RecommendedAction struct {
	Action    string `json:"action"`
	Priority  string `json:"priority"`
	Timeframe string `json:"timeframe"`
}

// SessionInsight is one analysis of a completed session. Append-only: repeated
// runs insert new rows and consumers pick the latest by created_at.
type SessionInsight struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SessionID uuid.UUID `gorm:"type:uuid;not null;index" json:"session_id"`
	SurveyID  uuid.UUID `gorm:"type:uuid;not null;index" json:"survey_id"`

	RootCause           string         `gorm:"type:text;not null" json:"root_cause"`
	SentimentTrajectory string         `gorm:"not null" json:"sentiment_trajectory"`
	KeyQuotes           datatypes.JSON `gorm:"type:jsonb" json:"key_quotes"`
	RecommendedActions  datatypes.JSON `gorm:"type:jsonb" json:"recommended_actions"`
	ConfidenceScore     int            `gorm:"not null;default:0" json:"confidence_score"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (SessionInsight) TableName() string { return "session_insight" }
