package http

import "github.com/gin-gonic/gin"

// Register registers the onboarding routes
func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/wizard/submissions", h.SubmitWizard)
	rg.GET("/businesses", h.ListBusinesses)
	rg.POST("/businesses/:id/analysis", h.RequestAnalysis)
}
