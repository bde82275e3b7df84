package repositories

import (
	"context"

	"github.com/learnloop/activity-service/internal/models"
)

// ActivityRepository interface for activity-specific operations
type ActivityRepository interface {
	// Basic CRUD operations
	Create(ctx context.Context, activity *models.Activity) error
	GetByID(ctx context.Context, id uint) (*models.Activity, error)
	Update(ctx context.Context, activity *models.Activity) error
	Delete(ctx context.Context, id uint) error // Soft delete

	// Query operations
	List(ctx context.Context, filters ActivityFilters) ([]*models.Activity, int64, error)
	GetBySubconcept(ctx context.Context, subconceptID string) ([]*models.Activity, error)

	// Validation helpers
	ExistsByTitle(ctx context.Context, title string, excludeID *uint) (bool, error)
}
