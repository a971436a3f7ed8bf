package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	AudienceExecutive = "executive"
	AudienceDetailed  = "detailed"
)

// ChapterKeys is the fixed chapter order every narrative report must follow.
var ChapterKeys = []string{"pulse", "working", "warnings", "why", "forward"}

// ReportInsight is one evidence-backed finding inside a chapter.
type ReportInsight struct {
	Text        string      `json:"text"`
	Confidence  int         `json:"confidence"` // 1-5
	EvidenceIDs []uuid.UUID `json:"evidence_ids"`
	Category    string      `json:"category"`
}

// Chapter is the JSON shape stored in NarrativeReport.Chapters.
type Chapter struct {
	Key       string          `json:"key"`
	Title     string          `json:"title"`
	Narrative string          `json:"narrative"`
	Insights  []ReportInsight `json:"insights"`
}

// NarrativeReport holds the five-chapter narrative for a survey. Exactly one
// row per survey carries is_latest=true at any moment.
type NarrativeReport struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SurveyID uuid.UUID `gorm:"type:uuid;not null;index:idx_report_survey_latest,priority:1" json:"survey_id"`

	Chapters        datatypes.JSON `gorm:"type:jsonb;not null" json:"chapters"`
	AudienceConfig  datatypes.JSON `gorm:"type:jsonb" json:"audience_config"`
	DataSnapshot    datatypes.JSON `gorm:"type:jsonb" json:"data_snapshot"`
	ConfidenceScore int            `gorm:"not null;default:0" json:"confidence_score"`
	IsLatest        bool           `gorm:"not null;default:false;index:idx_report_survey_latest,priority:2" json:"is_latest"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (NarrativeReport) TableName() string { return "narrative_report" }
