package postgres

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/localink/localink-backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type boolRow struct {
	v   bool
	err error
}

func (r boolRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*bool) = r.v
	return nil
}

// fakeTx embeds pgx.Tx so only the methods the migrator calls need bodies.
type fakeTx struct {
	pgx.Tx
	conn      *fakeConn
	committed bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	if t.conn.failOn != "" && strings.Contains(sql, t.conn.failOn) {
		return pgconn.CommandTag{}, errors.New("syntax error")
	}
	t.conn.txExec = append(t.conn.txExec, sql)
	return pgconn.CommandTag{}, nil
}

func (t *fakeTx) Commit(context.Context) error {
	t.committed = true
	t.conn.commits++
	return nil
}

func (t *fakeTx) Rollback(context.Context) error { return nil }

type fakeConn struct {
	applied map[string]bool
	exec    []string
	txExec  []string
	commits int
	failOn  string
}

func (c *fakeConn) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	c.exec = append(c.exec, sql)
	return pgconn.CommandTag{}, nil
}

func (c *fakeConn) QueryRow(_ context.Context, _ string, args ...any) pgx.Row {
	return boolRow{v: c.applied[args[0].(string)]}
}

func (c *fakeConn) Begin(context.Context) (pgx.Tx, error) {
	return &fakeTx{conn: c}, nil
}

func TestApply_SkipsRecordedMigrations(t *testing.T) {
	conn := &fakeConn{applied: map[string]bool{"0001_a.sql": true}}
	files := []migrations.File{
		{Name: "0001_a.sql", SQL: "CREATE TABLE a ()"},
		{Name: "0002_b.sql", SQL: "CREATE TABLE b ()"},
	}

	require.NoError(t, apply(context.Background(), conn, files, zaptest.NewLogger(t)))

	assert.Equal(t, 1, conn.commits)
	assert.Contains(t, conn.txExec, "CREATE TABLE b ()")
	assert.NotContains(t, conn.txExec, "CREATE TABLE a ()")

	require.NotEmpty(t, conn.exec)
	assert.Contains(t, conn.exec[0], "pg_advisory_lock")
	assert.Contains(t, conn.exec[len(conn.exec)-1], "pg_advisory_unlock")
}

func TestApply_StopsOnFailure(t *testing.T) {
	conn := &fakeConn{applied: map[string]bool{}, failOn: "broken"}
	files := []migrations.File{
		{Name: "0001_a.sql", SQL: "broken sql"},
		{Name: "0002_b.sql", SQL: "CREATE TABLE b ()"},
	}

	err := apply(context.Background(), conn, files, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "0001_a.sql")
	assert.Equal(t, 0, conn.commits)
	assert.Contains(t, conn.exec[len(conn.exec)-1], "pg_advisory_unlock", "lock released on failure")
}

func TestEnsureSchema_AppliesEmbeddedFiles(t *testing.T) {
	conn := &fakeConn{applied: map[string]bool{}}

	require.NoError(t, EnsureSchema(context.Background(), conn, zaptest.NewLogger(t)))
	assert.Equal(t, 2, conn.commits)
}
