package events

import (
	"time"

	"github.com/google/uuid"
)

// EventType represents the activity lifecycle events published to the
// learning platform.
type EventType string

const (
	EventActivityRegistered EventType = "activity.registered"
	EventSessionStarted     EventType = "session.started"
	EventPageScored         EventType = "page.scored"
	EventAttemptSubmitted   EventType = "attempt.submitted"
)

// ActivityEvent is the base envelope for all published events.
type ActivityEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

type ActivityRegisteredEvent struct {
	ActivityID   uint   `json:"activity_id"`
	Title        string `json:"title"`
	Dialect      string `json:"dialect"`
	SubconceptID string `json:"subconcept_id"`
	CreatedBy    string `json:"created_by"`
}

type SessionStartedEvent struct {
	SessionID  string    `json:"session_id"`
	ActivityID uint      `json:"activity_id"`
	UserID     string    `json:"user_id"`
	Dialect    string    `json:"dialect"`
	StartedAt  time.Time `json:"started_at"`
}

type PageScoredEvent struct {
	SessionID  string `json:"session_id"`
	ActivityID uint   `json:"activity_id"`
	UserID     string `json:"user_id"`
	PageID     string `json:"page_id"`
	PageIndex  int    `json:"page_index"`
	Correct    bool   `json:"correct"`
}

type AttemptSubmittedEvent struct {
	AttemptID        string    `json:"attempt_id"`
	SessionID        string    `json:"session_id"`
	ActivityID       uint      `json:"activity_id"`
	UserID           string    `json:"user_id"`
	SubconceptID     string    `json:"subconcept_id"`
	UserAttemptFlag  bool      `json:"userAttemptFlag"`
	UserAttemptScore int       `json:"userAttemptScore"`
	TotalMarks       int       `json:"total_marks"`
	ScorePercentage  float64   `json:"score_percentage"`
	SubmittedAt      time.Time `json:"submitted_at"`
}

func newEvent(eventType EventType, data interface{}) *ActivityEvent {
	return &ActivityEvent{
		ID:        uuid.NewString(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "activity-service",
		Version:   "1.0",
		Data:      data,
	}
}

func NewActivityRegisteredEvent(data ActivityRegisteredEvent) *ActivityEvent {
	return newEvent(EventActivityRegistered, data)
}

func NewSessionStartedEvent(data SessionStartedEvent) *ActivityEvent {
	return newEvent(EventSessionStarted, data)
}

func NewPageScoredEvent(data PageScoredEvent) *ActivityEvent {
	return newEvent(EventPageScored, data)
}

func NewAttemptSubmittedEvent(data AttemptSubmittedEvent) *ActivityEvent {
	return newEvent(EventAttemptSubmitted, data)
}
