package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/consultio/psa-api/internal/constants"
	apierrors "github.com/consultio/psa-api/internal/errors"
	"github.com/consultio/psa-api/internal/models"
	"github.com/consultio/psa-api/internal/services"
)

// RequireAuth checks if the user is authenticated via session
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		userID := session.Get(constants.ContextKeyUserID)

		if userID == nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		role := session.Get(constants.ContextKeyRole)

		// Store identity in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		if role != nil {
			c.Set(constants.ContextKeyRole, role)
		}
		c.Next()
	}
}

// RequireApprover allows only roles that can approve timesheets
func RequireApprover() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok || !actor.Role.CanApproveTimesheets() {
			apierrors.Forbidden(c, "approver role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireForecastEditor allows only roles that can edit forecasts
func RequireForecastEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok || !actor.Role.CanEditForecasts() {
			apierrors.Forbidden(c, "forecast editor role required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (string, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return "", false
	}

	id, ok := userID.(string)
	if !ok || id == "" {
		return "", false
	}
	return id, true
}

// GetActor retrieves the current user identity from context
func GetActor(c *gin.Context) (services.Actor, bool) {
	id, ok := GetUserID(c)
	if !ok {
		return services.Actor{}, false
	}

	role, exists := c.Get(constants.ContextKeyRole)
	if !exists {
		return services.Actor{}, false
	}

	roleStr, ok := role.(string)
	if !ok {
		return services.Actor{}, false
	}

	return services.Actor{ID: id, Role: models.UserRole(roleStr)}, true
}
