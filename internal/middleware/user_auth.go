package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// TokenKey is the context key holding the bearer token found on the request.
const TokenKey = "token"

// MaxTokenBodyBytes caps how much of a request body is buffered while looking
// for a token.
const MaxTokenBodyBytes = 1 << 20

// ExtractToken stores the request's bearer token under TokenKey without
// rejecting the request. The query parameter is only honoured when allowQuery is set.
func ExtractToken(allowQuery bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := TokenFromRequest(c, allowQuery); token != "" {
			c.Set(TokenKey, token)
		}
		c.Next()
	}
}

// TokenFromRequest looks for a token in the query string (when allowed), then
// the JSON body field "token", then an "Authorization: Bearer" header.
func TokenFromRequest(c *gin.Context, allowQuery bool) string {
	if allowQuery {
		if token := strings.TrimSpace(c.Query("token")); token != "" {
			return token
		}
	}

	if token := bodyToken(c); token != "" {
		return token
	}

	raw := strings.TrimSpace(c.GetHeader("Authorization"))
	if raw == "" {
		return ""
	}

	parts := strings.Fields(raw)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		log.Println("[AUTH] [ERROR] invalid authorization header format")
		return ""
	}
	return parts[1]
}

// bodyToken reads the "token" field of a JSON body and restores the body
// so handlers can bind it again.
func bodyToken(c *gin.Context) string {
	if c.Request.Body == nil || !strings.Contains(c.ContentType(), "json") {
		return ""
	}

	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, MaxTokenBodyBytes))
	c.Request.Body = io.NopCloser(bytes.NewBuffer(body))
	if err != nil {
		log.Println("[AUTH] [ERROR] read body failed:", err)
		return ""
	}

	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}

	var payload struct {
		Token interface{} `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}

	token, _ := payload.Token.(string)
	return strings.TrimSpace(token)
}
