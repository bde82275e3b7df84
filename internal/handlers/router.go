package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/learnloop/activity-service/internal/repositories"
	"github.com/learnloop/activity-service/internal/services"
	"github.com/learnloop/activity-service/internal/utils"
)

type HandlerManager struct {
	activityHandler *ActivityHandler
	sessionHandler  *SessionHandler
	attemptHandler  *AttemptHandler
}

func NewHandlerManager(
	activityService services.ActivityService,
	sessionService services.SessionService,
	exportService services.ExportService,
	attempts repositories.AttemptRepository,
	logger utils.Logger,
) *HandlerManager {
	return &HandlerManager{
		activityHandler: NewActivityHandler(activityService, exportService, logger),
		sessionHandler:  NewSessionHandler(sessionService, logger),
		attemptHandler:  NewAttemptHandler(attempts, logger),
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// Health check endpoint
	router.GET("/health", HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Activity routes
		activities := v1.Group("/activities")
		{
			activities.POST("", hm.activityHandler.RegisterActivity)
			activities.GET("", hm.activityHandler.ListActivities)
			activities.GET("/:id", hm.activityHandler.GetActivity)
			activities.PUT("/:id", hm.activityHandler.UpdateActivity)
			activities.DELETE("/:id", hm.activityHandler.DeleteActivity)
			activities.GET("/:id/content", hm.activityHandler.GetActivityContent)
			activities.GET("/:id/stats", hm.activityHandler.GetActivityStats)
			activities.GET("/:id/attempts/export", hm.activityHandler.ExportActivityAttempts)
		}

		// Session routes
		sessions := v1.Group("/sessions")
		{
			sessions.POST("", hm.sessionHandler.StartSession)
			sessions.GET("/:id", hm.sessionHandler.GetSession)

			// Quiz operations
			sessions.POST("/:id/select", hm.sessionHandler.SelectOption)
			sessions.POST("/:id/next", hm.sessionHandler.NextQuestion)
			sessions.POST("/:id/previous", hm.sessionHandler.PreviousQuestion)
			sessions.POST("/:id/submit", hm.sessionHandler.SubmitQuiz)
			sessions.POST("/:id/continue", hm.sessionHandler.ContinueFromSummary)

			// Matching operations
			sessions.POST("/:id/place", hm.sessionHandler.PlaceKeyword)
			sessions.POST("/:id/pages/next", hm.sessionHandler.AdvancePage)
			sessions.POST("/:id/pages/submit", hm.sessionHandler.SubmitPage)
		}

		// Attempt routes
		attempts := v1.Group("/attempts")
		{
			attempts.GET("", hm.attemptHandler.ListAttempts)
			attempts.GET("/:id", hm.attemptHandler.GetAttempt)
		}
	}
}
