package repositories

import (
	"time"

	"github.com/learnloop/activity-service/internal/models"
)

// ===== SHARED FILTER STRUCTS =====

type ActivityFilters struct {
	Dialect      *models.Dialect `json:"dialect"`
	SubconceptID *string         `json:"subconcept_id"`
	CreatedBy    *string         `json:"created_by"`
	Limit        int             `json:"limit"`
	Offset       int             `json:"offset"`
	SortBy       string          `json:"sort_by"`    // "created_at", "title"
	SortOrder    string          `json:"sort_order"` // "asc", "desc"
}

type AttemptFilters struct {
	ActivityID *uint      `json:"activity_id"`
	UserID     *string    `json:"user_id"`
	DateFrom   *time.Time `json:"date_from"`
	DateTo     *time.Time `json:"date_to"`
	Limit      int        `json:"limit"`
	Offset     int        `json:"offset"`
	SortBy     string     `json:"sort_by"`
	SortOrder  string     `json:"sort_order"`
}

// ===== SHARED STATISTICS STRUCTS =====

type ActivityStats struct {
	TotalAttempts  int     `json:"total_attempts"`
	PassedAttempts int     `json:"passed_attempts"`
	AverageScore   float64 `json:"average_score"`
	AveragePercent float64 `json:"average_percent"`
	DistinctUsers  int     `json:"distinct_users"`
}
