package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/statusboard/statusboard/pkg/metrics"
	"github.com/stretchr/testify/require"
)

func limitedRouter(mw gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw)
	r.GET("/", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	r.POST("/", func(c *gin.Context) { c.JSON(http.StatusCreated, gin.H{"ok": true}) })
	return r
}

// post issues a POST from addr; every test uses its own address so the
// shared limiter store does not leak buckets between tests.
func post(r *gin.Engine, addr string) int {
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := limitedRouter(RateLimitMiddleware(10, 2))
	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))

	require.Equal(t, http.StatusCreated, post(r, "198.51.100.1:1000"))
	require.Equal(t, http.StatusCreated, post(r, "198.51.100.1:1000"))

	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := limitedRouter(RateLimitMiddleware(2, 1))
	addr := "198.51.100.2:1000"

	require.Equal(t, http.StatusCreated, post(r, addr))
	require.Equal(t, http.StatusTooManyRequests, post(r, addr))

	// one token is back after 0.5s
	time.Sleep(600 * time.Millisecond)
	require.Equal(t, http.StatusCreated, post(r, addr))
}

func TestRateLimitMiddleware_ReadsAreNotLimited(t *testing.T) {
	r := limitedRouter(RateLimitMiddleware(0.1, 1))
	addr := "198.51.100.3:1000"
	require.Equal(t, http.StatusCreated, post(r, addr))
	require.Equal(t, http.StatusTooManyRequests, post(r, addr))

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimitMiddleware_SeparateClients(t *testing.T) {
	r := limitedRouter(RateLimitMiddleware(0.1, 1))
	require.Equal(t, http.StatusCreated, post(r, "198.51.100.4:1000"))
	require.Equal(t, http.StatusTooManyRequests, post(r, "198.51.100.4:1000"))
	require.Equal(t, http.StatusCreated, post(r, "198.51.100.5:1000"))
}
