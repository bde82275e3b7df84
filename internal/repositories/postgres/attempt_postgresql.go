package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/learnloop/activity-service/internal/models"
	"github.com/learnloop/activity-service/internal/repositories"
	"gorm.io/gorm"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a AttemptPostgreSQL) Create(ctx context.Context, attempt *models.AttemptRecord) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a AttemptPostgreSQL) GetByID(ctx context.Context, id uuid.UUID) (*models.AttemptRecord, error) {
	var attempt models.AttemptRecord
	if err := a.db.WithContext(ctx).
		Preload("Activity").
		First(&attempt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) List(ctx context.Context, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error) {
	var attempts []*models.AttemptRecord
	var total int64

	query := a.db.WithContext(ctx).Model(&models.AttemptRecord{})
	query = a.applyFilters(query, filters)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPaginationAndSort(query, filters.SortBy, filters.SortOrder, filters.Limit, filters.Offset)

	if err := query.Preload("Activity").Find(&attempts).Error; err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

func (a AttemptPostgreSQL) GetByUser(ctx context.Context, userID string, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error) {
	filters.UserID = &userID
	return a.List(ctx, filters)
}

func (a AttemptPostgreSQL) GetByActivity(ctx context.Context, activityID uint, filters repositories.AttemptFilters) ([]*models.AttemptRecord, int64, error) {
	filters.ActivityID = &activityID
	return a.List(ctx, filters)
}

func (a AttemptPostgreSQL) GetBestByUserAndActivity(ctx context.Context, userID string, activityID uint) (*models.AttemptRecord, error) {
	var attempt models.AttemptRecord
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND activity_id = ?", userID, activityID).
		Order("score_percentage desc, submitted_at asc").
		First(&attempt).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (a AttemptPostgreSQL) GetActivityStats(ctx context.Context, activityID uint) (*repositories.ActivityStats, error) {
	var total, passed, users int64
	var avgScore, avgPercent float64

	base := a.db.WithContext(ctx).Model(&models.AttemptRecord{}).Where("activity_id = ?", activityID)

	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Where("user_attempt_flag = true").Count(&passed).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).Distinct("user_id").Count(&users).Error; err != nil {
		return nil, err
	}
	if total > 0 {
		row := base.Session(&gorm.Session{}).
			Select("AVG(user_attempt_score), AVG(score_percentage)").
			Row()
		if err := row.Scan(&avgScore, &avgPercent); err != nil {
			return nil, err
		}
	}

	return &repositories.ActivityStats{
		TotalAttempts:  int(total),
		PassedAttempts: int(passed),
		AverageScore:   avgScore,
		AveragePercent: avgPercent,
		DistinctUsers:  int(users),
	}, nil
}

func (a AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.ActivityID != nil {
		query = query.Where("activity_id = ?", *filters.ActivityID)
	}
	if filters.UserID != nil {
		query = query.Where("user_id = ?", *filters.UserID)
	}
	if filters.DateFrom != nil {
		query = query.Where("submitted_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("submitted_at <= ?", *filters.DateTo)
	}
	return query
}
