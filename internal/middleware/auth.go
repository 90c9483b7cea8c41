package middleware

import (
	"github.com/emploai/emploai-server/internal/apierrors"
	"github.com/emploai/emploai-server/internal/constants"
	"github.com/emploai/emploai-server/internal/database"
	"github.com/emploai/emploai-server/internal/models"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
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

		// Store user ID in context for easy access in handlers
		c.Set(constants.ContextKeyUserID, userID)
		c.Next()
	}
}

// GetUserID retrieves the current user ID from context. Sessions store the
// id as a string; older cookies may carry raw bytes.
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return uuid.Nil, false
	}

	switch id := v.(type) {
	case string:
		parsed, err := uuid.Parse(id)
		if err != nil {
			return uuid.Nil, false
		}
		return parsed, true
	case uuid.UUID:
		return id, true
	case []byte:
		parsed, err := uuid.ParseBytes(id)
		if err != nil {
			return uuid.Nil, false
		}
		return parsed, true
	default:
		return uuid.Nil, false
	}
}

// RequireSupervisor allows only supervisor or admin role users through.
// Must run after RequireAuth.
func RequireSupervisor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := GetUserID(c)
		if !exists {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().First(&user, "id = ?", userID).Error; err != nil {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}
		if !user.IsSupervisor() {
			apierrors.Forbidden(c, "Supervisor role required")
			c.Abort()
			return
		}

		c.Next()
	}
}
