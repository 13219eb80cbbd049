package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"supa-casino-backend/internal/models"
	"supa-casino-backend/internal/services"
)

const userContextKey = "current_user"

// SessionContext resolves the session cookie into a user on every request.
// Missing, unknown or expired sessions are not an error here; the request
// continues anonymous and RequireAuth decides whether that matters.
func SessionContext(auth *services.AuthService, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err == nil && token != "" {
			if user, err := auth.UserForToken(c.Request.Context(), token); err == nil {
				c.Set(userContextKey, user)
			}
		}
		c.Next()
	}
}

// RequireAuth rejects requests that did not resolve to a user.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := c.Get(userContextKey); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentUser returns the user set by SessionContext, or nil.
func CurrentUser(c *gin.Context) *models.User {
	v, ok := c.Get(userContextKey)
	if !ok {
		return nil
	}
	user, _ := v.(*models.User)
	return user
}
