package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	EnrichmentRunSucceeded = "succeeded"
	EnrichmentRunFailed    = "failed"
)

type EnrichmentRun struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Status string    `gorm:"column:status;not null;index" json:"status"` // succeeded|failed
	Error  string    `gorm:"column:error" json:"error,omitempty"`
	// UserRequestHash identifies repeat requests without storing learner text.
	UserRequestHash string `gorm:"column:user_request_hash;index" json:"user_request_hash"`

	Sections         int `gorm:"column:sections;not null;default:0" json:"sections"`
	Subsections      int `gorm:"column:subsections;not null;default:0" json:"subsections"`
	Topics           int `gorm:"column:topics;not null;default:0" json:"topics"`
	Resources        int `gorm:"column:resources;not null;default:0" json:"resources"`
	Questions        int `gorm:"column:questions;not null;default:0" json:"questions"`
	ResourceFailures int `gorm:"column:resource_failures;not null;default:0" json:"resource_failures"`
	QuestionFailures int `gorm:"column:question_failures;not null;default:0" json:"question_failures"`

	SummaryFailed     bool   `gorm:"column:summary_failed;not null;default:false" json:"summary_failed"`
	AudioGenerated    bool   `gorm:"column:audio_generated;not null;default:false" json:"audio_generated"`
	AudioFailed       bool   `gorm:"column:audio_failed;not null;default:false" json:"audio_failed"`
	AudioURL          string `gorm:"column:audio_url" json:"audio_url,omitempty"`
	CapstoneGenerated bool   `gorm:"column:capstone_generated;not null;default:false" json:"capstone_generated"`
	CapstoneFailed    bool   `gorm:"column:capstone_failed;not null;default:false" json:"capstone_failed"`

	DurationMS int64          `gorm:"column:duration_ms;not null;default:0" json:"duration_ms"`
	Metadata   datatypes.JSON `gorm:"type:jsonb;column:metadata" json:"metadata"`
	CreatedAt  time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (EnrichmentRun) TableName() string { return "enrichment_run" }
