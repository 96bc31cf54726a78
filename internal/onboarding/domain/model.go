package domain

import "time"

// Business is the persisted record of a completed business wizard.
// It is only ever created by this service, never updated.
type Business struct {
	ID          string    `json:"id" db:"id"`
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Category    string    `json:"category" db:"category"`
	Description string    `json:"description" db:"description"`
	Address     string    `json:"address" db:"address"`
	Goals       string    `json:"goals,omitempty" db:"goals"`
	Challenges  string    `json:"challenges,omitempty" db:"challenges"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Actor is the authenticated user behind a request.
type Actor struct {
	UserID string `json:"id"`
	Email  string `json:"email"`
}

const (
	KindBusiness = "business"
	KindConsumer = "consumer"
)

// User-visible notifications.
const (
	MessageBusinessCreated  = "Business created!"
	MessageConsumerComplete = "Registration completed!"
	MessageBusinessFailed   = "Error creating business"
	MessageConsumerFailed   = "Error processing registration"
)

// Result describes a successful submission.
type Result struct {
	Kind      string    `json:"kind"`
	Business  *Business `json:"business,omitempty"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	Message   string    `json:"message"`
}
