package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SurveyAnalyticsSnapshot is one immutable synthesis run over a whole survey.
// Rows are never updated or deleted; "latest" is whichever sorts last by
// created_at.
type SurveyAnalyticsSnapshot struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SurveyID uuid.UUID `gorm:"type:uuid;not null;index" json:"survey_id"`

	ExecutiveSummary         string         `gorm:"type:text;not null" json:"executive_summary"`
	TopThemes                datatypes.JSON `gorm:"type:jsonb" json:"top_themes"`
	SentimentTrends          datatypes.JSON `gorm:"type:jsonb" json:"sentiment_trends"`
	CulturalInsights         string         `gorm:"type:text" json:"cultural_insights"`
	RiskFactors              datatypes.JSON `gorm:"type:jsonb" json:"risk_factors"`
	Opportunities            datatypes.JSON `gorm:"type:jsonb" json:"opportunities"`
	StrategicRecommendations datatypes.JSON `gorm:"type:jsonb" json:"strategic_recommendations"`
	ParticipationAnalysis    string         `gorm:"type:text" json:"participation_analysis"`
	ConfidenceScore          int            `gorm:"not null;default:0" json:"confidence_score"`
	TotalSessionsAnalyzed    int            `gorm:"not null;default:0" json:"total_sessions_analyzed"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (SurveyAnalyticsSnapshot) TableName() string { return "survey_analytics_snapshot" }
