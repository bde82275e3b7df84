package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/learnloop/activity-service/internal/models"
)

// AttemptRepository interface for attempt record operations
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.AttemptRecord) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.AttemptRecord, error)

	// Query operations
	List(ctx context.Context, filters AttemptFilters) ([]*models.AttemptRecord, int64, error)
	GetByUser(ctx context.Context, userID string, filters AttemptFilters) ([]*models.AttemptRecord, int64, error)
	GetByActivity(ctx context.Context, activityID uint, filters AttemptFilters) ([]*models.AttemptRecord, int64, error)
	GetBestByUserAndActivity(ctx context.Context, userID string, activityID uint) (*models.AttemptRecord, error)

	// Statistics
	GetActivityStats(ctx context.Context, activityID uint) (*ActivityStats, error)
}
