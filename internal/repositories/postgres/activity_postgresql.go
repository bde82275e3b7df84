package postgres

import (
	"context"

	"github.com/learnloop/activity-service/internal/models"
	"github.com/learnloop/activity-service/internal/repositories"
	"gorm.io/gorm"
)

type ActivityPostgreSQL struct {
	db *gorm.DB
}

func NewActivityPostgreSQL(db *gorm.DB) repositories.ActivityRepository {
	return &ActivityPostgreSQL{db: db}
}

func (a ActivityPostgreSQL) Create(ctx context.Context, activity *models.Activity) error {
	return a.db.WithContext(ctx).Create(activity).Error
}

func (a ActivityPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	var activity models.Activity
	if err := a.db.WithContext(ctx).First(&activity, id).Error; err != nil {
		return nil, err
	}
	return &activity, nil
}

func (a ActivityPostgreSQL) Update(ctx context.Context, activity *models.Activity) error {
	return a.db.WithContext(ctx).Save(activity).Error
}

func (a ActivityPostgreSQL) Delete(ctx context.Context, id uint) error {
	return a.db.WithContext(ctx).Delete(&models.Activity{}, id).Error
}

func (a ActivityPostgreSQL) List(ctx context.Context, filters repositories.ActivityFilters) ([]*models.Activity, int64, error) {
	var activities []*models.Activity
	var total int64

	query := a.db.WithContext(ctx).Model(&models.Activity{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

func (a ActivityPostgreSQL) GetBySubconcept(ctx context.Context, subconceptID string) ([]*models.Activity, error) {
	var activities []*models.Activity
	if err := a.db.WithContext(ctx).
		Where("subconcept_id = ?", subconceptID).
		Order("created_at asc").
		Find(&activities).Error; err != nil {
		return nil, err
	}
	return activities, nil
}

func (a ActivityPostgreSQL) ExistsByTitle(ctx context.Context, title string, excludeID *uint) (bool, error) {
	var count int64
	query := a.db.WithContext(ctx).Model(&models.Activity{}).Where("title = ?", title)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (a ActivityPostgreSQL) applyFilters(query *gorm.DB, filters repositories.ActivityFilters) *gorm.DB {
	if filters.Dialect != nil {
		query = query.Where("dialect = ?", *filters.Dialect)
	}
	if filters.SubconceptID != nil {
		query = query.Where("subconcept_id = ?", *filters.SubconceptID)
	}
	if filters.CreatedBy != nil {
		query = query.Where("created_by = ?", *filters.CreatedBy)
	}
	return query
}
