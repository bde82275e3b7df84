package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/learnloop/activity-service/internal/models"
	"github.com/learnloop/activity-service/internal/repositories"
	"github.com/learnloop/activity-service/internal/services"
	"github.com/learnloop/activity-service/internal/utils"
)

type ActivityHandler struct {
	BaseHandler
	activityService services.ActivityService
	exportService   services.ExportService
}

func NewActivityHandler(
	activityService services.ActivityService,
	exportService services.ExportService,
	logger utils.Logger,
) *ActivityHandler {
	return &ActivityHandler{
		BaseHandler:     NewBaseHandler(logger),
		activityService: activityService,
		exportService:   exportService,
	}
}

// RegisterActivity registers a new activity
// @Summary Register activity
// @Tags activities
// @Accept json
// @Produce json
// @Success 201 {object} models.Activity
// @Router /activities [post]
func (h *ActivityHandler) RegisterActivity(c *gin.Context) {
	var req services.RegisterActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	activity, err := h.activityService.Register(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, activity)
}

// GetActivity retrieves an activity by ID
func (h *ActivityHandler) GetActivity(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	activity, err := h.activityService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// ListActivities lists registered activities with optional filters
func (h *ActivityHandler) ListActivities(c *gin.Context) {
	filters := repositories.ActivityFilters{
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}
	if dialect := c.Query("dialect"); dialect != "" {
		d := models.Dialect(dialect)
		filters.Dialect = &d
	}
	if subconcept := c.Query("subconcept_id"); subconcept != "" {
		filters.SubconceptID = &subconcept
	}
	if limit, err := strconv.Atoi(c.Query("limit")); err == nil {
		filters.Limit = limit
	}
	if offset, err := strconv.Atoi(c.Query("offset")); err == nil {
		filters.Offset = offset
	}

	resp, err := h.activityService.List(c.Request.Context(), filters)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// UpdateActivity updates activity metadata
func (h *ActivityHandler) UpdateActivity(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	var req services.UpdateActivityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	activity, err := h.activityService.Update(c.Request.Context(), id, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, activity)
}

// DeleteActivity removes an activity without attempts
func (h *ActivityHandler) DeleteActivity(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	if err := h.activityService.Delete(c.Request.Context(), id); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// GetActivityContent serves the parsed content with answer keys stripped.
func (h *ActivityHandler) GetActivityContent(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	h.LogRequest(c, "Serving activity content", "activity_id", id)

	parsed, err := h.activityService.PublicContent(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, parsed)
}

// GetActivityStats serves aggregate attempt statistics for an activity
func (h *ActivityHandler) GetActivityStats(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	stats, err := h.activityService.GetStats(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// ExportActivityAttempts streams the attempt-results workbook
func (h *ActivityHandler) ExportActivityAttempts(c *gin.Context) {
	id := h.parseIDParam(c, "id")
	if id == 0 {
		return
	}

	data, err := h.exportService.ExportActivityAttempts(c.Request.Context(), id)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="attempts.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}
