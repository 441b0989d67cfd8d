package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statusboard/statusboard/pkg/logger"
)

// RequestLogger writes one line per request through pkg/logger. 5xx
// responses log at error, 4xx at warn, everything else at info.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		latency := time.Since(start)
		switch {
		case status >= 500:
			logger.Errorf("%s %s %d %s %s", c.Request.Method, c.Request.URL.Path, status, latency, c.Errors.String())
		case status >= 400:
			logger.Warnf("%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, latency)
		default:
			logger.Infof("%s %s %d %s", c.Request.Method, c.Request.URL.Path, status, latency)
		}
	}
}
