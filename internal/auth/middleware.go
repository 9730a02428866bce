package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

// bearer extracts the token from "Bearer <t>" or the legacy "Token <t>" scheme.
func bearer(h string) (string, bool) {
	for _, prefix := range []string{"Bearer ", "Token "} {
		if strings.HasPrefix(h, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(h, prefix)), true
		}
	}
	return "", false
}

func resolve(c *gin.Context) (bool, error) {
	h := c.GetHeader("Authorization")
	if h == "" {
		return false, nil
	}
	tokenStr, ok := bearer(h)
	if !ok {
		return false, apperr.Unauthenticated()
	}
	claims, err := ParseToken(tokenStr)
	if err != nil {
		return false, apperr.Unauthenticated()
	}
	// Role and existence come from storage, never from the claims.
	u, err := users.Get(c.Request.Context(), database.DB, claims.UserID)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return false, apperr.Unauthenticated()
		}
		return false, err
	}
	c.Set("user_id", u.ID)
	c.Set("user_email", u.Email)
	c.Set("user_role", u.Role)
	users.SetViewer(c, users.ViewerOf(u))
	return true, nil
}

// RequireAuth rejects requests without a valid token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := resolve(c)
		if err != nil {
			apperr.Respond(c, err)
			return
		}
		if !ok {
			apperr.Respond(c, apperr.Unauthenticated())
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the viewer when a token is present. A malformed or
// expired token is still rejected.
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := resolve(c); err != nil {
			apperr.Respond(c, err)
			return
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ViewerFrom(c).IsAdmin() {
			apperr.Respond(c, apperr.Forbidden("admin role required"))
			return
		}
		c.Next()
	}
}

// ViewerFrom returns the acting user resolved for this request.
func ViewerFrom(c *gin.Context) users.Viewer {
	return users.CurrentViewer(c)
}
