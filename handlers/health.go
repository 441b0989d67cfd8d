package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/statusboard/statusboard/internal/storage"
)

var startTime = time.Now()

// readyTimeout bounds a single backend ping.
const readyTimeout = 2 * time.Second

// RegisterHealth adds /health (liveness) and /ready, which only answers 200
// while the storage backend responds.
func RegisterHealth(r *gin.Engine, backend string, kv storage.KV) {
	r.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "healthy")
	})

	r.GET("/ready", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		deps := gin.H{"backend": backend}
		uptime := time.Since(startTime).String()
		if err := storage.Ping(ctx, kv); err != nil {
			deps["storage"] = false
			deps["error"] = err.Error()
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "deps": deps, "uptime": uptime})
			return
		}
		deps["storage"] = true
		c.JSON(http.StatusOK, gin.H{"status": "ready", "deps": deps, "uptime": uptime})
	})
}
