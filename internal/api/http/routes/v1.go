package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/localink/localink-backend/internal/chat"
	onboardinghttp "github.com/localink/localink-backend/internal/onboarding/http"
)

type V1Deps struct {
	Auth       gin.HandlerFunc
	Onboarding *onboardinghttp.Handler
	Chat       *chat.Handler
}

// RegisterV1 mounts the authenticated application API under /api/v1.
func RegisterV1(r *gin.Engine, dep V1Deps) {
	api := r.Group("/api/v1")
	if dep.Auth != nil {
		api.Use(dep.Auth)
	}

	if dep.Onboarding != nil {
		dep.Onboarding.Register(api)
	}
	if dep.Chat != nil {
		dep.Chat.Register(api)
	}
}
