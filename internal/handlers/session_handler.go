package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/learnloop/activity-service/internal/matching"
	"github.com/learnloop/activity-service/internal/quiz"
	"github.com/learnloop/activity-service/internal/services"
	"github.com/learnloop/activity-service/internal/utils"
)

type SessionHandler struct {
	BaseHandler
	sessionService services.SessionService
}

func NewSessionHandler(sessionService services.SessionService, logger utils.Logger) *SessionHandler {
	return &SessionHandler{
		BaseHandler:    NewBaseHandler(logger),
		sessionService: sessionService,
	}
}

type startSessionRequest struct {
	ActivityID uint `json:"activity_id" binding:"required"`
}

type selectOptionRequest struct {
	OptionID string `json:"option_id" binding:"required"`
}

type placeKeywordRequest struct {
	KeywordID string `json:"keyword_id" binding:"required"`
	Target    string `json:"target" binding:"required"`
}

// StartSession opens a new session for an activity
func (h *SessionHandler) StartSession(c *gin.Context) {
	var req startSessionRequest
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

	view, err := h.sessionService.Start(c.Request.Context(), req.ActivityID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusCreated, view)
}

// GetSession returns the current session view
func (h *SessionHandler) GetSession(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	view, err := h.sessionService.Get(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// SelectOption records an option choice on the current quiz question
func (h *SessionHandler) SelectOption(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req selectOptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	view, err := h.sessionService.SelectOption(c.Request.Context(), sessionID, userID, req.OptionID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

// NextQuestion advances the quiz cursor
func (h *SessionHandler) NextQuestion(c *gin.Context) {
	h.quizNavigation(c, h.sessionService.NextQuestion)
}

// PreviousQuestion moves the quiz cursor back
func (h *SessionHandler) PreviousQuestion(c *gin.Context) {
	h.quizNavigation(c, h.sessionService.PreviousQuestion)
}

// SubmitQuiz scores the quiz and enters the summary phase
func (h *SessionHandler) SubmitQuiz(c *gin.Context) {
	h.quizNavigation(c, h.sessionService.SubmitQuiz)
}

// ContinueFromSummary finalizes the session and returns the outcome
func (h *SessionHandler) ContinueFromSummary(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	outcome, err := h.sessionService.Finalize(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, outcome)
}

// PlaceKeyword moves a keyword onto a definition slot or back to the pool
func (h *SessionHandler) PlaceKeyword(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req placeKeywordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	result, err := h.sessionService.PlaceKeyword(c.Request.Context(), sessionID, userID, req.KeywordID, req.Target)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// SubmitPage manually scores the current matching page
func (h *SessionHandler) SubmitPage(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	result, err := h.sessionService.SubmitPage(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AdvancePage moves to the next matching page
func (h *SessionHandler) AdvancePage(c *gin.Context) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	view, err := h.sessionService.AdvancePage(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) quizNavigation(c *gin.Context, op func(ctx context.Context, sessionID, userID string) (*services.SessionView, error)) {
	sessionID, userID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	view, err := op(c.Request.Context(), sessionID, userID)
	if err != nil {
		h.handleSessionError(c, err)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h *SessionHandler) sessionParams(c *gin.Context) (sessionID, userID string, ok bool) {
	sessionID = ParseStringIDParam(c, "id")
	if sessionID == "" {
		return "", "", false
	}
	userID, ok = h.requireUserID(c)
	if !ok {
		return "", "", false
	}
	return sessionID, userID, true
}

// handleSessionError adds the state machine guard errors to the generic
// mapping: violated phase or placement guards are client errors, not 500s.
func (h *SessionHandler) handleSessionError(c *gin.Context, err error) {
	if isStateConflict(err) {
		h.RespondWithError(c, http.StatusConflict, err.Error(), err)
		return
	}
	if isStateBadRequest(err) {
		h.RespondWithError(c, http.StatusBadRequest, err.Error(), err)
		return
	}
	h.handleServiceError(c, err)
}

func isStateConflict(err error) bool {
	return errors.Is(err, quiz.ErrAlreadySubmitted) ||
		errors.Is(err, quiz.ErrAlreadyLoaded) ||
		errors.Is(err, matching.ErrPageLocked)
}

func isStateBadRequest(err error) bool {
	return errors.Is(err, quiz.ErrNotAnswering) ||
		errors.Is(err, quiz.ErrNotSummarizing) ||
		errors.Is(err, matching.ErrIncompletePlacement) ||
		errors.Is(err, matching.ErrUnknownKeyword) ||
		errors.Is(err, matching.ErrUnknownDefinition) ||
		errors.Is(err, matching.ErrNotComplete) ||
		errors.Is(err, matching.ErrLastPage) ||
		errors.Is(err, services.ErrSessionWrongDialect)
}
