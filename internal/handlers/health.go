package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

func Health(store Pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		now := time.Now().UTC()
		if err := store.Ping(c.Request.Context()); err != nil {
			log.Println("[HEALTH] [ERROR] store ping failed:", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "store unavailable", "store": "unavailable", "timestamp": now})
			return
		}

		c.JSON(http.StatusOK, gin.H{"ok": true, "store": "ok", "timestamp": now})
	}
}
