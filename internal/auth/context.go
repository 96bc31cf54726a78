package auth

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/localink/localink-backend/internal/onboarding/domain"
)

// Gin context keys set by the auth middlewares.
const (
	CtxFirebaseUID = "firebase_uid"
	CtxEmail       = "email"
)

// UserFirebaseUID extracts the Firebase UID from the Gin context
func UserFirebaseUID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(CtxFirebaseUID))
}

// ActorFrom returns the authenticated identity, or nil when the request has none.
func ActorFrom(c *gin.Context) *domain.Actor {
	uid := UserFirebaseUID(c)
	if uid == "" {
		return nil
	}
	return &domain.Actor{
		UserID: uid,
		Email:  strings.TrimSpace(c.GetString(CtxEmail)),
	}
}
