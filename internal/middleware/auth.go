package middleware

import (
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"
	"github.com/learnloop/activity-service/internal/config"
	"github.com/learnloop/activity-service/internal/utils"
)

// Auth returns the authentication middleware. With Casdoor enabled it
// verifies the bearer token and puts the subject's id on the context as
// "user_id". Disabled, it trusts the X-User-ID header; that mode is for
// development and gateway-terminated deployments only.
func Auth(cfg config.AuthConfig, logger utils.Logger) gin.HandlerFunc {
	if cfg.Enabled {
		casdoorsdk.InitConfig(
			cfg.Endpoint,
			cfg.ClientID,
			cfg.ClientSecret,
			cfg.Certificate,
			cfg.Organization,
			cfg.Application,
		)
		logger.Info("Casdoor authentication enabled", "endpoint", cfg.Endpoint)
		return casdoorAuth(logger)
	}

	logger.Warn("Authentication disabled, trusting X-User-ID header")
	return headerAuth()
}

func casdoorAuth(logger utils.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Missing bearer token"})
			return
		}

		claims, err := casdoorsdk.ParseJwtToken(token)
		if err != nil {
			logger.Warn("Rejected invalid token", "error", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Invalid token"})
			return
		}

		userID := claims.User.Id
		if userID == "" {
			userID = claims.User.Name
		}
		c.Set("user_id", userID)
		c.Set("user_name", claims.User.Name)
		c.Next()
	}
}

func headerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID := c.GetHeader("X-User-ID"); userID != "" {
			c.Set("user_id", userID)
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
