package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/learnloop/activity-service/internal/repositories"
	"github.com/xuri/excelize/v2"
)

// ExportService produces attempt-result workbooks for activity authors.
type ExportService interface {
	ExportActivityAttempts(ctx context.Context, activityID uint) ([]byte, error)
}

type exportService struct {
	activities ActivityService
	attempts   repositories.AttemptRepository
	logger     *slog.Logger
}

func NewExportService(activities ActivityService, attempts repositories.AttemptRepository, logger *slog.Logger) ExportService {
	return &exportService{
		activities: activities,
		attempts:   attempts,
		logger:     logger,
	}
}

func (s *exportService) ExportActivityAttempts(ctx context.Context, activityID uint) ([]byte, error) {
	activity, err := s.activities.GetByID(ctx, activityID)
	if err != nil {
		return nil, err
	}

	attempts, _, err := s.attempts.GetByActivity(ctx, activityID, repositories.AttemptFilters{
		SortBy:    "submitted_at",
		SortOrder: "asc",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get activity attempts: %w", err)
	}

	f := excelize.NewFile()
	sheetName := "Results"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to create Excel sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{
		"Attempt ID", "User ID", "Activity", "Dialect", "Submitted At",
		"Score", "Total Marks", "Percentage", "Completed",
	}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for rowIndex, attempt := range attempts {
		row := []interface{}{
			attempt.ID.String(),
			attempt.UserID,
			activity.Title,
			string(activity.Dialect),
			attempt.SubmittedAt.Format("2006-01-02 15:04:05"),
			attempt.UserAttemptScore,
			attempt.TotalMarks,
			attempt.ScorePercentage,
		}
		if attempt.UserAttemptFlag {
			row = append(row, "Yes")
		} else {
			row = append(row, "No")
		}

		for colIndex, value := range row {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, rowIndex+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}

	s.logger.Info("Exported activity attempts", "activity_id", activityID, "rows", len(attempts))
	return buf.Bytes(), nil
}
