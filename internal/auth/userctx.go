package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
)

// HeaderIdentity trusts X-User-Id / X-User-Email. Use this ONLY for development
// when Firebase is disabled. A missing header leaves the request anonymous.
func HeaderIdentity() gin.HandlerFunc {
	return func(c *gin.Context) {
		if uid := strings.TrimSpace(c.GetHeader("X-User-Id")); uid != "" {
			c.Set(CtxFirebaseUID, uid)
			c.Set(CtxEmail, strings.TrimSpace(c.GetHeader("X-User-Email")))
		}
		c.Next()
	}
}
