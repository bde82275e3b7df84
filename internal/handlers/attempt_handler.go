package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/learnloop/activity-service/internal/repositories"
	"github.com/learnloop/activity-service/internal/utils"
	"gorm.io/gorm"
)

type AttemptHandler struct {
	BaseHandler
	attempts repositories.AttemptRepository
}

func NewAttemptHandler(attempts repositories.AttemptRepository, logger utils.Logger) *AttemptHandler {
	return &AttemptHandler{
		BaseHandler: NewBaseHandler(logger),
		attempts:    attempts,
	}
}

// ListAttempts lists the authenticated user's attempt records
func (h *AttemptHandler) ListAttempts(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	filters := repositories.AttemptFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if activityID, err := strconv.ParseUint(c.Query("activity_id"), 10, 32); err == nil {
		id := uint(activityID)
		filters.ActivityID = &id
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = offset
	}
	if filters.Limit <= 0 || filters.Limit > 100 {
		filters.Limit = 20
	}

	attempts, total, err := h.attempts.GetByUser(c.Request.Context(), userID, filters)
	if err != nil {
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to list attempts", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"attempts": attempts,
		"total":    total,
		"limit":    filters.Limit,
		"offset":   filters.Offset,
	})
}

// GetAttempt retrieves one attempt record by id
func (h *AttemptHandler) GetAttempt(c *gin.Context) {
	idStr := ParseStringIDParam(c, "id")
	if idStr == "" {
		return
	}
	id, err := uuid.Parse(idStr)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid id",
			Details: "must be a UUID",
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	attempt, err := h.attempts.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			h.RespondWithError(c, http.StatusNotFound, "attempt not found", err)
			return
		}
		h.RespondWithError(c, http.StatusInternalServerError, "Failed to get attempt", err)
		return
	}
	if attempt.UserID != userID {
		h.RespondWithError(c, http.StatusNotFound, "attempt not found", nil)
		return
	}

	c.JSON(http.StatusOK, attempt)
}
