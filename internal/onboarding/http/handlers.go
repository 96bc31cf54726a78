package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localink/localink-backend/internal/auth"
	"github.com/localink/localink-backend/internal/onboarding/domain"
	"github.com/localink/localink-backend/internal/onboarding/service"
	"github.com/localink/localink-backend/internal/wizard"
)

type Handler struct {
	svc *service.SubmissionService
}

func New(svc *service.SubmissionService) *Handler {
	return &Handler{svc: svc}
}

// SubmitWizard handles the terminal submit of the onboarding wizard.
func (h *Handler) SubmitWizard(c *gin.Context) {
	actor := auth.ActorFrom(c)
	if actor == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}

	var sub wizard.Submission
	if err := c.ShouldBindJSON(&sub); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}

	res, err := h.svc.Submit(c.Request.Context(), actor, sub)
	if err != nil {
		h.writeSubmitError(c, sub, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "message": res.Message, "result": res})
}

func (h *Handler) writeSubmitError(c *gin.Context, sub wizard.Submission, err error) {
	var (
		incomplete  *wizard.IncompleteError
		persistence *domain.PersistenceError
	)

	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
	case errors.As(err, &incomplete):
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "wizard incomplete",
			"step":    incomplete.Step,
			"fields":  incomplete.Fields,
		})
	case errors.Is(err, wizard.ErrUnknownUserType):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "unknown user type", "details": err.Error()})
	case errors.As(err, &persistence):
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": failureMessage(sub), "details": persistence.Err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": failureMessage(sub), "details": err.Error()})
	}
}

func failureMessage(sub wizard.Submission) string {
	if sub.UserType == wizard.UserTypeConsumer {
		return domain.MessageConsumerFailed
	}
	return domain.MessageBusinessFailed
}

// ListBusinesses returns the caller's businesses, newest first.
func (h *Handler) ListBusinesses(c *gin.Context) {
	businesses, err := h.svc.ListBusinesses(c.Request.Context(), auth.ActorFrom(c))
	if errors.Is(err, domain.ErrUnauthenticated) {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list businesses", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "businesses": businesses})
}

// RequestAnalysis asks the automation for fresh dashboard content.
func (h *Handler) RequestAnalysis(c *gin.Context) {
	err := h.svc.RequestAnalysis(c.Request.Context(), auth.ActorFrom(c), c.Param("id"))
	switch {
	case err == nil:
		c.JSON(http.StatusAccepted, gin.H{"success": true, "message": "Analysis requested"})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
	case errors.Is(err, domain.ErrBusinessNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "business not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to request analysis", "details": err.Error()})
	}
}
