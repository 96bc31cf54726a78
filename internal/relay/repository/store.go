package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/localink/localink-backend/internal/relay/domain"
)

// Fixed slot ids. Each variant keeps exactly one record.
const (
	SlotBusiness = "latest_webhook_data"
	SlotConsumer = "latest_consumer_data"
)

// ErrNoRecord is returned by Load when nothing was ever saved to a slot.
var ErrNoRecord = domain.ErrNoRecord

// Snapshot is the stored form of a record.
type Snapshot struct {
	Data      json.RawMessage `json:"data"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// Store keeps one snapshot per slot. Save fully replaces the previous value;
// concurrent saves resolve as last write wins.
type Store interface {
	Load(ctx context.Context, slot string) (*Snapshot, error)
	Save(ctx context.Context, slot string, snap Snapshot) error
}
