package chat

import (
	"encoding/json"
	"strings"
)

const (
	EventMessageSent = "chat_message_sent"
	SourceChat       = "localink_chat"
)

// Replies used when the chatbot gives nothing usable back.
const (
	ReplyAcknowledged = "Thank you for your message! I received it successfully."
	ReplyQueued       = "Message sent to chatbot successfully! (Response may take a moment to process)"
)

type Message struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
	UserID    string `json:"userId"`
	UserEmail string `json:"userEmail"`
}

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Payload is posted to the chatbot workflow for every user message.
type Payload struct {
	Event     string  `json:"event"`
	Message   Message `json:"message"`
	User      *User   `json:"user,omitempty"`
	Timestamp string  `json:"timestamp"`
	Source    string  `json:"source,omitempty"`
}

// Probed in order.
var replyFields = []string{"response", "message", "content", "reply", "text", "answer"}

// ExtractReply pulls the bot's answer out of a workflow response. Bodies that
// are not JSON are used verbatim.
func ExtractReply(body []byte) string {
	text := strings.TrimSpace(string(body))
	if text == "" {
		return ReplyAcknowledged
	}

	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return text
	}

	for _, name := range replyFields {
		if s, ok := fields[name].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return text
}
