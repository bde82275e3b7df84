package models

import (
	"time"

	"gorm.io/gorm"
)

// Dialect identifies which XML schema an activity's content URL serves.
// Dispatch is by registration, never by sniffing the fetched document.
type Dialect string

const (
	DialectQuiz            Dialect = "quiz"
	DialectMatchingPairs   Dialect = "matching_pairs"
	DialectFlashcardSlider Dialect = "flashcard_slider"
)

func (d Dialect) Valid() bool {
	switch d {
	case DialectQuiz, DialectMatchingPairs, DialectFlashcardSlider:
		return true
	}
	return false
}

// Activity is one registered unit of learner-facing content, described by an
// XML document served at ContentURL.
type Activity struct {
	ID         uint    `json:"id" gorm:"primaryKey"`
	Title      string  `json:"title" gorm:"not null;size:200;index" validate:"required,min=1,max=200"`
	ContentURL string  `json:"content_url" gorm:"not null;size:500" validate:"required,url"`
	Dialect    Dialect `json:"dialect" gorm:"not null;index" validate:"required,dialect"`

	// SubconceptID ties the activity to the platform's unit of progress
	// tracking; SubconceptMaxScore is the externally supplied denominator of
	// the final percentage and may differ from the activity's own total marks.
	SubconceptID       string  `json:"subconcept_id" gorm:"size:100;index" validate:"required"`
	SubconceptMaxScore float64 `json:"subconcept_max_score" gorm:"not null" validate:"required,gt=0"`

	CreatedBy string         `json:"created_by" gorm:"size:100;index"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (Activity) TableName() string {
	return "activities"
}
