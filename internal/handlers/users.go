package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"favorites/internal/middleware"
	"favorites/internal/models"
	"favorites/internal/services"
)

type SignupRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SigninRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// respondUserError renders identity failures as {result:false}. With soft set,
// validation and token failures keep a 200 status. Unique index violations
// are always 409.
func respondUserError(c *gin.Context, route string, err error, soft bool) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrConflict):
		status = http.StatusConflict
	case errors.Is(err, services.ErrMissingFields), errors.Is(err, services.ErrInvalidEmail):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrMissingToken), errors.Is(err, services.ErrUnknownToken):
		status = http.StatusUnauthorized
	case errors.Is(err, services.ErrEmailTaken), errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrUserNotFound):
		status = http.StatusOK
	default:
		respondInternalError(c, route, "result", err)
		return
	}

	if soft && status != http.StatusConflict {
		status = http.StatusOK
	}
	log.Printf("[%s] [ERROR] returning %d: %v", route, status, err)
	c.JSON(status, gin.H{"result": false, "error": err.Error()})
}

func Signup(identity *services.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SignupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, gin.H{
				"result":  false,
				"error":   services.ErrMissingFields.Error(),
				"details": validationDetails(err),
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		user, err := identity.Register(ctx, req.Username, req.Email, req.Password)
		if err != nil {
			respondUserError(c, "SIGNUP", err, true)
			return
		}

		c.JSON(http.StatusOK, gin.H{"result": true, "user": user.Public()})
	}
}

func Signin(identity *services.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SigninRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusOK, gin.H{
				"result":  false,
				"error":   services.ErrMissingFields.Error(),
				"details": validationDetails(err),
			})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		user, err := identity.Authenticate(ctx, req.Email, req.Password)
		if err != nil {
			respondUserError(c, "SIGNIN", err, true)
			return
		}

		log.Println("[SIGNIN] [INFO] user signed in:", user.Email)
		c.JSON(http.StatusOK, gin.H{"result": true, "user": user.Public()})
	}
}

// GetMe expects middleware.RequireUser to have resolved the caller.
func GetMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := c.Get(middleware.UserKey)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"result": false, "error": services.ErrUnknownToken.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"result": true, "user": user.(*models.User).Public()})
	}
}

func UpdateMe(identity *services.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateProfileRequest
		if err := bindOptionalJSON(c, &req); err != nil {
			log.Println("[UPDATE_ME] [ERROR] invalid body:", err)
			c.JSON(http.StatusBadRequest, gin.H{"result": false, "error": "invalid body"})
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		user, err := identity.UpdateProfile(ctx, c.GetString(middleware.TokenKey), services.ProfileUpdate{
			Username: req.Username,
			Email:    req.Email,
			Password: req.Password,
		})
		if err != nil {
			respondUserError(c, "UPDATE_ME", err, false)
			return
		}

		log.Println("[UPDATE_ME] [INFO] profile updated:", user.ID.Hex())
		c.JSON(http.StatusOK, gin.H{"result": true, "user": user})
	}
}

func DeleteMe(identity *services.Identity) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), dbTimeout)
		defer cancel()

		if err := identity.DeleteAccount(ctx, c.GetString(middleware.TokenKey)); err != nil {
			respondUserError(c, "DELETE_ME", err, true)
			return
		}

		c.JSON(http.StatusOK, gin.H{"result": true, "message": "user deleted"})
	}
}
