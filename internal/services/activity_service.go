package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/learnloop/activity-service/internal/content"
	"github.com/learnloop/activity-service/internal/events"
	"github.com/learnloop/activity-service/internal/models"
	"github.com/learnloop/activity-service/internal/parser"
	"github.com/learnloop/activity-service/internal/repositories"
	"github.com/learnloop/activity-service/internal/validator"
	"gorm.io/gorm"
)

// ===== REQUEST/RESPONSE TYPES =====

type RegisterActivityRequest struct {
	Title              string  `json:"title" validate:"required,min=1,max=200"`
	ContentURL         string  `json:"content_url" validate:"required,url"`
	Dialect            string  `json:"dialect" validate:"required,dialect"`
	SubconceptID       string  `json:"subconcept_id" validate:"required"`
	SubconceptMaxScore float64 `json:"subconcept_max_score" validate:"required,gt=0"`
}

type UpdateActivityRequest struct {
	Title              *string  `json:"title" validate:"omitempty,min=1,max=200"`
	ContentURL         *string  `json:"content_url" validate:"omitempty,url"`
	SubconceptID       *string  `json:"subconcept_id" validate:"omitempty"`
	SubconceptMaxScore *float64 `json:"subconcept_max_score" validate:"omitempty,gt=0"`
}

type ActivityListResponse struct {
	Activities []*models.Activity `json:"activities"`
	Total      int64              `json:"total"`
	Limit      int                `json:"limit"`
	Offset     int                `json:"offset"`
}

// ActivityService manages the activity catalog and its parsed content.
type ActivityService interface {
	Register(ctx context.Context, req *RegisterActivityRequest, creatorID string) (*models.Activity, error)
	GetByID(ctx context.Context, id uint) (*models.Activity, error)
	List(ctx context.Context, filters repositories.ActivityFilters) (*ActivityListResponse, error)
	Update(ctx context.Context, id uint, req *UpdateActivityRequest) (*models.Activity, error)
	Delete(ctx context.Context, id uint) error

	// LoadContent fetches and parses the full content, answer keys included.
	// Callers serving learners must go through PublicContent instead.
	LoadContent(ctx context.Context, activity *models.Activity) (*models.ActivityContent, error)
	PublicContent(ctx context.Context, id uint) (*models.ActivityContent, error)

	GetStats(ctx context.Context, id uint) (*repositories.ActivityStats, error)
}

type activityService struct {
	activities repositories.ActivityRepository
	attempts   repositories.AttemptRepository
	fetcher    content.Fetcher
	publisher  events.EventPublisher
	validator  *validator.Validator
	logger     *slog.Logger
}

func NewActivityService(
	activities repositories.ActivityRepository,
	attempts repositories.AttemptRepository,
	fetcher content.Fetcher,
	publisher events.EventPublisher,
	v *validator.Validator,
	logger *slog.Logger,
) ActivityService {
	return &activityService{
		activities: activities,
		attempts:   attempts,
		fetcher:    fetcher,
		publisher:  publisher,
		validator:  v,
		logger:     logger,
	}
}

func (s *activityService) Register(ctx context.Context, req *RegisterActivityRequest, creatorID string) (*models.Activity, error) {
	s.logger.Info("Registering activity", "title", req.Title, "dialect", req.Dialect, "creator_id", creatorID)

	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	exists, err := s.activities.ExistsByTitle(ctx, req.Title, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
	}
	if exists {
		return nil, ErrActivityDuplicateTitle
	}

	activity := &models.Activity{
		Title:              req.Title,
		ContentURL:         req.ContentURL,
		Dialect:            models.Dialect(req.Dialect),
		SubconceptID:       req.SubconceptID,
		SubconceptMaxScore: req.SubconceptMaxScore,
		CreatedBy:          creatorID,
	}

	// Reject registrations whose document is unreachable or fails to parse,
	// so learners never start a session against broken content.
	if _, err := s.LoadContent(ctx, activity); err != nil {
		return nil, err
	}

	if err := s.activities.Create(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to create activity: %w", err)
	}

	event := events.NewActivityRegisteredEvent(events.ActivityRegisteredEvent{
		ActivityID:   activity.ID,
		Title:        activity.Title,
		Dialect:      string(activity.Dialect),
		SubconceptID: activity.SubconceptID,
		CreatedBy:    creatorID,
	})
	if err := s.publisher.PublishActivityEvent(ctx, event); err != nil {
		s.logger.Warn("Failed to publish activity registered event", "activity_id", activity.ID, "error", err)
	}

	s.logger.Info("Activity registered", "activity_id", activity.ID)
	return activity, nil
}

func (s *activityService) GetByID(ctx context.Context, id uint) (*models.Activity, error) {
	activity, err := s.activities.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		return nil, fmt.Errorf("failed to get activity: %w", err)
	}
	return activity, nil
}

func (s *activityService) List(ctx context.Context, filters repositories.ActivityFilters) (*ActivityListResponse, error) {
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	activities, total, err := s.activities.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}

	return &ActivityListResponse{
		Activities: activities,
		Total:      total,
		Limit:      filters.Limit,
		Offset:     filters.Offset,
	}, nil
}

func (s *activityService) Update(ctx context.Context, id uint, req *UpdateActivityRequest) (*models.Activity, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	activity, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil && *req.Title != activity.Title {
		exists, err := s.activities.ExistsByTitle(ctx, *req.Title, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to check title uniqueness: %w", err)
		}
		if exists {
			return nil, ErrActivityDuplicateTitle
		}
		activity.Title = *req.Title
	}
	if req.SubconceptID != nil {
		activity.SubconceptID = *req.SubconceptID
	}
	if req.SubconceptMaxScore != nil {
		activity.SubconceptMaxScore = *req.SubconceptMaxScore
	}
	if req.ContentURL != nil && *req.ContentURL != activity.ContentURL {
		activity.ContentURL = *req.ContentURL
		if _, err := s.LoadContent(ctx, activity); err != nil {
			return nil, err
		}
	}

	if err := s.activities.Update(ctx, activity); err != nil {
		return nil, fmt.Errorf("failed to update activity: %w", err)
	}

	s.logger.Info("Activity updated", "activity_id", id)
	return activity, nil
}

func (s *activityService) Delete(ctx context.Context, id uint) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}

	_, total, err := s.attempts.GetByActivity(ctx, id, repositories.AttemptFilters{Limit: 1})
	if err != nil {
		return fmt.Errorf("failed to check existing attempts: %w", err)
	}
	if total > 0 {
		return ErrActivityNotDeletable
	}

	if err := s.activities.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete activity: %w", err)
	}

	s.logger.Info("Activity deleted", "activity_id", id)
	return nil
}

func (s *activityService) LoadContent(ctx context.Context, activity *models.Activity) (*models.ActivityContent, error) {
	data, err := s.fetcher.Fetch(ctx, activity.ContentURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentUnavailable, err)
	}

	parsed, err := parser.Parse(activity.Dialect, data, s.logger)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrContentInvalid, err)
	}
	return parsed, nil
}

// PublicContent returns the parsed content with answer keys stripped, for
// delivery to learners.
func (s *activityService) PublicContent(ctx context.Context, id uint) (*models.ActivityContent, error) {
	activity, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	parsed, err := s.LoadContent(ctx, activity)
	if err != nil {
		return nil, err
	}
	return redactAnswerKeys(parsed), nil
}

func (s *activityService) GetStats(ctx context.Context, id uint) (*repositories.ActivityStats, error) {
	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	stats, err := s.attempts.GetActivityStats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to compute activity stats: %w", err)
	}
	return stats, nil
}

// redactAnswerKeys deep-copies the content and blanks every field that would
// let a client derive the correct answers.
func redactAnswerKeys(parsed *models.ActivityContent) *models.ActivityContent {
	out := &models.ActivityContent{
		Dialect:    parsed.Dialect,
		HeaderText: parsed.HeaderText,
		Vocabulary: parsed.Vocabulary,
	}

	for _, q := range parsed.Questions {
		redacted := q
		redacted.Options = make([]models.Option, len(q.Options))
		for i, opt := range q.Options {
			redacted.Options[i] = models.Option{ID: opt.ID, Text: opt.Text}
		}
		out.Questions = append(out.Questions, redacted)
	}

	for _, page := range parsed.Pages {
		redacted := models.MatchingPage{
			ActivityID: page.ActivityID,
			Keywords:   append([]models.Keyword(nil), page.Keywords...),
		}
		for _, def := range page.Definitions {
			redacted.Definitions = append(redacted.Definitions, models.Definition{ID: def.ID, Text: def.Text})
		}
		out.Pages = append(out.Pages, redacted)
	}

	return out
}
