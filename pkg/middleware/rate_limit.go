package middleware

import (
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/statusboard/statusboard/pkg/metrics"
	"golang.org/x/time/rate"
)

// per-key limiter store (simple in-memory token-bucket)
var limiterStore sync.Map // map[string]*rate.Limiter

// getLimiter returns (and lazily creates) a token-bucket limiter for the given key
func getLimiter(key string, rps float64, burst int) *rate.Limiter {
	v, _ := limiterStore.LoadOrStore(key, rate.NewLimiter(rate.Limit(rps), burst))
	return v.(*rate.Limiter)
}

// clientKey buckets requests by client IP.
func clientKey(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	return "ip:" + ip
}

func rejectRateLimited(c *gin.Context, retryAfter string) {
	c.Header("Retry-After", retryAfter)
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"code": "429 Too Many Requests", "message": "Rate limit exceeded."})
}

// RateLimitMiddleware returns a Gin middleware enforcing a per-client
// token-bucket limit on mutating requests. Reads are never limited.
// rps = allowed events per second, burst = maximum tokens in bucket.
func RateLimitMiddleware(rps float64, burst int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if IsSafeMethod(c.Request.Method) {
			c.Next()
			return
		}
		lim := getLimiter(clientKey(c), rps, burst)
		if !lim.Allow() {
			metrics.RateLimitRejected.WithLabelValues("memory").Inc()
			rejectRateLimited(c, "1")
			return
		}
		metrics.RateLimitAllowed.WithLabelValues("memory").Inc()
		c.Next()
	}
}
