package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/statusboard/statusboard/pkg/metrics"
)

// Metrics records request totals and latency. Routes are labelled with the
// registered pattern (e.g. "/:id") so ids never reach label values.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
