package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
	SentimentMixed    = "mixed"
)

func ValidSentiment(s string) bool {
	switch s {
	case SentimentPositive, SentimentNegative, SentimentNeutral, SentimentMixed:
		return true
	}
	return false
}

// ResponseSignal is an atomic pre-tagged observation extracted from one
// response by the upstream extraction stage. Immutable once created.
type ResponseSignal struct {
	ID         uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	ResponseID uuid.UUID `gorm:"type:uuid;not null;index" json:"response_id"`
	SurveyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_signal_survey_dimension,priority:1" json:"survey_id"`

	Dimension  string  `gorm:"not null;index:idx_signal_survey_dimension,priority:2" json:"dimension"`
	Facet      string  `gorm:"column:facet" json:"facet"`
	SignalText string  `gorm:"type:text;not null" json:"signal_text"`
	Intensity  float64 `gorm:"not null;default:0" json:"intensity"`
	Sentiment  string  `gorm:"not null;default:'neutral'" json:"sentiment"`
	Confidence float64 `gorm:"not null;default:0" json:"confidence"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (ResponseSignal) TableName() string { return "response_signal" }

// AggregatedSignal is a cluster of signals collapsed into one cross-response
// summary. The whole set for a survey is regenerated on every aggregation run.
type AggregatedSignal struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SurveyID uuid.UUID `gorm:"type:uuid;not null;index" json:"survey_id"`

	SignalText   string  `gorm:"type:text;not null" json:"signal_text"`
	Dimension    string  `gorm:"not null;index" json:"dimension"`
	Facet        string  `gorm:"column:facet" json:"facet"`
	Sentiment    string  `gorm:"not null;default:'neutral'" json:"sentiment"`
	VoiceCount   int     `gorm:"not null;default:0" json:"voice_count"`
	AgreementPct int     `gorm:"not null;default:0" json:"agreement_pct"`
	AvgIntensity float64 `gorm:"not null;default:0" json:"avg_intensity"`

	// EvidenceIDs holds the response ids backing this aggregate.
	EvidenceIDs datatypes.JSON `gorm:"type:jsonb" json:"evidence_ids"`

	CreatedAt time.Time `gorm:"not null;default:now()" json:"created_at"`
}

func (AggregatedSignal) TableName() string { return "aggregated_signal" }
