package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
)

// MissingSecretMessage is served as plain text while no secret is configured.
const MissingSecretMessage = "Secret is not defined. Please add STATUS_SECRET."

// IsSafeMethod reports whether m may be served without authorization.
// OPTIONS is included so CORS preflights never need the secret.
func IsSafeMethod(m string) bool {
	switch m {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return true
	}
	return false
}

// SharedSecret guards every non-safe request with a raw comparison of the
// Authorization header against secret. No scheme prefix is parsed.
//
// An empty secret is a misconfiguration: every request, safe or not, is
// refused with a plain-text explanation until the secret is set.
func SharedSecret(secret string) gin.HandlerFunc {
	want := []byte(secret)
	return func(c *gin.Context) {
		c.Header("Vary", "Authorization")

		if secret == "" {
			c.String(http.StatusInternalServerError, MissingSecretMessage)
			c.Abort()
			return
		}

		if IsSafeMethod(c.Request.Method) {
			c.Next()
			return
		}

		got := []byte(c.GetHeader("Authorization"))
		if subtle.ConstantTimeCompare(got, want) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "401 Unauthorized", "message": "Unauthorized"})
			return
		}
		c.Next()
	}
}
