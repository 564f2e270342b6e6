package handlers

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

const dbTimeout = 5 * time.Second

func recoverPanic(c *gin.Context, recovered interface{}) {
	log.Printf("[%s %s] panic recovered: %v", c.Request.Method, c.FullPath(), recovered)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"result": false, "error": "internal server error"})
}

func notFound(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{"result": false, "error": "not found"})
}

func respondInternalError(c *gin.Context, route string, key string, err error) {
	log.Printf("[%s] [ERROR] %v", route, err)
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{key: false, "error": "internal server error"})
}

// bindOptionalJSON binds a JSON body when one is present. A missing or empty
// body leaves obj untouched.
func bindOptionalJSON(c *gin.Context, obj interface{}) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func validationDetails(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	details := make([]string, 0, len(validationErrors))
	for _, fieldError := range validationErrors {
		field := lowerCamel(fieldError.Field())
		switch fieldError.Tag() {
		case "required":
			details = append(details, fmt.Sprintf("%s is required", field))
		default:
			details = append(details, fmt.Sprintf("%s is invalid", field))
		}
	}
	return details
}

func lowerCamel(field string) string {
	if field == "" {
		return field
	}
	return strings.ToLower(field[:1]) + field[1:]
}
