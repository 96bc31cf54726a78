package chat

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/localink/localink-backend/internal/auth"
	"github.com/localink/localink-backend/internal/onboarding/domain"
)

type Handler struct {
	relay *Relay
}

func NewHandler(relay *Relay) *Handler {
	return &Handler{relay: relay}
}

func (h *Handler) Register(rg *gin.RouterGroup) {
	rg.POST("/chat/messages", h.SendMessage)
}

// SendMessage relays one chat message and returns the bot's reply.
func (h *Handler) SendMessage(c *gin.Context) {
	var body struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid request body", "details": err.Error()})
		return
	}

	reply, err := h.relay.Send(c.Request.Context(), auth.ActorFrom(c), body.Message)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "reply": reply})
	case errors.Is(err, domain.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "user not authenticated"})
	case errors.Is(err, ErrEmptyMessage):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": "Failed to send message to chatbot"})
	}
}
