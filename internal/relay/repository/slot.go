package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Slot is a typed view over one store slot.
type Slot[T any] struct {
	store Store
	id    string
}

func NewSlot[T any](store Store, id string) *Slot[T] {
	return &Slot[T]{store: store, id: id}
}

func (s *Slot[T]) ID() string {
	return s.id
}

// Get returns the stored record, or nil when the slot is empty.
func (s *Slot[T]) Get(ctx context.Context) (*T, time.Time, error) {
	snap, err := s.store.Load(ctx, s.id)
	if errors.Is(err, ErrNoRecord) {
		return nil, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	var v T
	if err := json.Unmarshal(snap.Data, &v); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to unmarshal %s: %w", s.id, err)
	}
	return &v, snap.UpdatedAt, nil
}

func (s *Slot[T]) Put(ctx context.Context, v T, at time.Time) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", s.id, err)
	}
	return s.store.Save(ctx, s.id, Snapshot{Data: data, UpdatedAt: at.UTC()})
}
