package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS allows cross-origin reads and writes from any origin. It is meant to
// run first so error responses from later middleware stay readable by
// browsers. Preflights that nothing downstream answered get a 204.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, HEAD, PUT, POST, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		h.Set("Access-Control-Expose-Headers", "Content-Length, Location")
		h.Set("Access-Control-Max-Age", "86400")
		c.Next()
		if c.Request.Method == http.MethodOptions && !c.Writer.Written() {
			c.Status(http.StatusNoContent)
		}
	}
}
