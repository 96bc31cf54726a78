package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/localink/localink-backend/internal/automation"
	"github.com/localink/localink-backend/internal/logging"
	"github.com/localink/localink-backend/internal/onboarding/domain"
	"go.uber.org/zap"
)

var (
	ErrEmptyMessage = errors.New("message is empty")
	ErrUnavailable  = errors.New("failed to send message to chatbot")
)

// Relay forwards chat messages to the chatbot workflow and returns its reply.
type Relay struct {
	client *automation.Client
	now    func() time.Time
}

func NewRelay(client *automation.Client) *Relay {
	return &Relay{client: client, now: time.Now}
}

// Send posts content on behalf of actor. When the readable request fails, one
// opaque fallback is sent and a queued acknowledgement is returned instead of
// the bot's answer.
func (r *Relay) Send(ctx context.Context, actor *domain.Actor, content string) (string, error) {
	if actor == nil || actor.UserID == "" {
		return "", domain.ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return "", ErrEmptyMessage
	}
	if r.client == nil || r.client.Endpoint() == "" {
		return "", fmt.Errorf("%w: chat webhook not configured", ErrUnavailable)
	}

	log := logging.FromContext(ctx).With(zap.String("user_id", actor.UserID))
	ts := automation.Timestamp(r.now())
	msg := Message{Content: content, Timestamp: ts, UserID: actor.UserID, UserEmail: actor.Email}

	body, err := json.Marshal(Payload{
		Event:     EventMessageSent,
		Message:   msg,
		User:      &User{ID: actor.UserID, Email: actor.Email},
		Timestamp: ts,
		Source:    SourceChat,
	})
	if err != nil {
		return "", fmt.Errorf("marshal chat payload: %w", err)
	}

	resp, err := r.client.Primary(ctx, body)
	if err == nil {
		return ExtractReply(resp), nil
	}
	log.Warn("chat webhook failed, sending fallback", zap.Error(err))

	// The fallback carries the message only.
	fallback, err := json.Marshal(Payload{Event: EventMessageSent, Message: msg, Timestamp: ts})
	if err != nil {
		return "", fmt.Errorf("marshal chat fallback: %w", err)
	}
	if err := r.client.Fallback(ctx, fallback); err != nil {
		log.Error("chat fallback failed", zap.Error(err))
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return ReplyQueued, nil
}
