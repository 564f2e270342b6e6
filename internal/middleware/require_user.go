package middleware

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"favorites/internal/services"
)

// UserKey is the context key holding the *models.User resolved by RequireUser.
const UserKey = "user"

// RequireUser resolves the token set by ExtractToken and aborts with 401 when
// it does not belong to a user.
func RequireUser(identity *services.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		user, err := identity.ResolveByToken(ctx, c.GetString(TokenKey))
		switch {
		case err == nil:
		case errors.Is(err, services.ErrMissingToken), errors.Is(err, services.ErrUnknownToken):
			log.Println("[AUTH] [ERROR] token rejected:", err)
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"result": false, "error": err.Error()})
			return
		default:
			log.Println("[AUTH] [ERROR] token lookup failed:", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"result": false, "error": "internal server error"})
			return
		}

		c.Set(UserKey, user)
		c.Next()
	}
}
