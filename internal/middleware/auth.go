package middleware

import (
	"net/http"

	"updoot/internal/models"
	"updoot/internal/repositories"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	// CurrentUserKey holds the *models.User in the gin context.
	CurrentUserKey = "current_user"
	// SessionUserID is the session key the user id lives under.
	SessionUserID = "user_id"
)

// LoadUser resolves the session's user id to a user record and stashes it in
// the request context. A stale session (deleted user) is treated as signed out.
func LoadUser(users repositories.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if id, ok := session.Get(SessionUserID).(uint); ok {
			if user, err := users.GetByID(id); err == nil {
				c.Set(CurrentUserKey, user)
			}
		}
		c.Next()
	}
}

// AuthRequired rejects requests that carry no authenticated user.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, exists := c.Get(CurrentUserKey); !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

// CurrentUser returns the signed-in user for the request, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok
}
