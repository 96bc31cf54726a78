package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// slotTables maps each slot to its table. Table names are never taken from input.
var slotTables = map[string]string{
	SlotBusiness: "dashboard_webhook_data",
	SlotConsumer: "consumer_dashboard_data",
}

// pgxQuerier is satisfied by *pgxpool.Pool and pgx.Tx.
type pgxQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore keeps one row per slot, keyed by the slot id.
type PostgresStore struct {
	db pgxQuerier
}

func NewPostgresStore(db pgxQuerier) *PostgresStore {
	return &PostgresStore{db: db}
}

func (p *PostgresStore) Load(ctx context.Context, slot string) (*Snapshot, error) {
	table, err := tableFor(slot)
	if err != nil {
		return nil, err
	}

	q := fmt.Sprintf(`select data, updated_at from %s where id = $1`, table)

	var (
		data []byte
		snap Snapshot
	)
	err = p.db.QueryRow(ctx, q, slot).Scan(&data, &snap.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoRecord
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", slot, err)
	}
	if len(data) == 0 {
		return nil, ErrNoRecord
	}
	snap.Data = data
	return &snap, nil
}

func (p *PostgresStore) Save(ctx context.Context, slot string, snap Snapshot) error {
	table, err := tableFor(slot)
	if err != nil {
		return err
	}

	q := fmt.Sprintf(`
insert into %s (id, data, updated_at)
values ($1, $2, $3)
on conflict (id) do update
set
  data = excluded.data,
  updated_at = excluded.updated_at;
`, table)

	if _, err := p.db.Exec(ctx, q, slot, []byte(snap.Data), snap.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save %s: %w", slot, err)
	}
	return nil
}

func tableFor(slot string) (string, error) {
	table, ok := slotTables[slot]
	if !ok {
		return "", fmt.Errorf("unknown relay slot %q", slot)
	}
	return table, nil
}
