package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AttemptRecord is the frozen result of one completed session, written once
// at final submission. Responses holds the raw selection map (quiz) or the
// final placement snapshot (matching) as JSON.
type AttemptRecord struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey"`
	ActivityID uint      `json:"activity_id" gorm:"not null;index"`
	UserID     string    `json:"user_id" gorm:"not null;size:100;index"`

	UserAttemptFlag  bool    `json:"user_attempt_flag" gorm:"not null"`
	UserAttemptScore int     `json:"user_attempt_score" gorm:"not null"`
	TotalMarks       int     `json:"total_marks" gorm:"not null"`
	ScorePercentage  float64 `json:"score_percentage" gorm:"not null"`

	Responses   datatypes.JSON `json:"responses" gorm:"type:jsonb"`
	SubmittedAt time.Time      `json:"submitted_at" gorm:"not null;index"`

	// Relations
	Activity Activity `json:"-" gorm:"foreignKey:ActivityID"`
}

func (AttemptRecord) TableName() string {
	return "attempt_records"
}
