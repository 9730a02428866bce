package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/apperr"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/database"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/logging"
	"github.com/Dmitrii-Kiselev-31/foodgram-project-react/internal/users"
)

type loginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func LoginHandler(c *gin.Context) {
	var dto loginDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		apperr.Respond(c, apperr.FromBinding(err))
		return
	}

	u, err := users.GetByEmail(c.Request.Context(), database.DB, dto.Email)
	if err != nil || !users.CheckPassword(u, dto.Password) {
		if err != nil && apperr.KindOf(err) == 0 {
			apperr.Respond(c, err)
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "unable to log in with provided credentials"})
		return
	}

	tok, err := GenerateToken(u)
	if err != nil {
		logging.Error().Err(err).Msg("failed to generate token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"auth_token": tok})
}

// LogoutHandler is a no-op: tokens are stateless and expire on their own.
func LogoutHandler(c *gin.Context) {
	c.Status(http.StatusNoContent)
}
