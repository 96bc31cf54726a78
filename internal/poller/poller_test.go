package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"
)

type rec struct{ ts string }

func (r rec) Stamp() string { return r.ts }

func stored(ts string) Update[rec]        { return Update[rec]{Record: rec{ts: ts}, HasNewData: true} }
func placeholder(ts string) Update[rec] { return Update[rec]{Record: rec{ts: ts}, HasNewData: false} }

// scriptFetcher replays responses in order and repeats the last one.
type scriptFetcher struct {
	mu    sync.Mutex
	steps []step
	calls int32
}

type step struct {
	update Update[rec]
	err    error
}

func (f *scriptFetcher) Fetch(ctx context.Context) (Update[rec], error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()

	s := f.steps[0]
	if len(f.steps) > 1 {
		f.steps = f.steps[1:]
	}
	return s.update, s.err
}

func (f *scriptFetcher) Calls() int32 { return atomic.LoadInt32(&f.calls) }

type recorder struct {
	mu   sync.Mutex
	seen []string
}

func (r *recorder) NewData(v rec) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, v.ts)
}

func (r *recorder) Seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.seen...)
}

type every time.Duration

func (e every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

func script(updates ...Update[rec]) *scriptFetcher {
	f := &scriptFetcher{}
	for _, u := range updates {
		f.steps = append(f.steps, step{update: u})
	}
	return f
}

func TestPoller_SignalsOncePerChange(t *testing.T) {
	f := script(stored("T0"), stored("T0"), stored("T1"), stored("T1"))
	r := &recorder{}
	p := New[rec](f, r, every(time.Hour), zaptest.NewLogger(t))

	for i := 0; i < 4; i++ {
		require.NoError(t, p.RefreshNow(context.Background()))
	}

	assert.Equal(t, []string{"T1"}, r.Seen())
	assert.Equal(t, "T1", p.LastSeen())
	require.NotNil(t, p.Current())
	assert.Equal(t, "T1", p.Current().ts)
}

func TestPoller_PlaceholdersNeverSignal(t *testing.T) {
	// Default records carry a fresh timestamp on every read.
	f := script(placeholder("D1"), placeholder("D2"), placeholder("D3"), stored("T0"), stored("T0"), placeholder("D4"))
	r := &recorder{}
	p := New[rec](f, r, every(time.Hour), zaptest.NewLogger(t))

	for i := 0; i < 3; i++ {
		require.NoError(t, p.RefreshNow(context.Background()))
	}
	assert.Empty(t, r.Seen())
	assert.Equal(t, "D1", p.Current().ts, "equal identities do not replace the cache")

	require.NoError(t, p.RefreshNow(context.Background()))
	require.NoError(t, p.RefreshNow(context.Background()))
	assert.Equal(t, []string{"T0"}, r.Seen())

	require.NoError(t, p.RefreshNow(context.Background()))
	assert.Equal(t, []string{"T0"}, r.Seen(), "reverting to a placeholder is not new data")
	assert.Equal(t, "D4", p.Current().ts)
}

func TestPoller_FirstReadSeedsWithoutSignal(t *testing.T) {
	r := &recorder{}
	p := New[rec](script(stored("T0")), r, every(time.Hour), nil)

	assert.Nil(t, p.Current())
	require.NoError(t, p.RefreshNow(context.Background()))

	assert.Empty(t, r.Seen())
	assert.Equal(t, "T0", p.Current().ts)
	assert.False(t, p.Loading())
}

func TestPoller_RefreshError(t *testing.T) {
	f := &scriptFetcher{steps: []step{{err: errors.New("relay down")}}}
	p := New[rec](f, nil, every(time.Hour), nil)

	err := p.RefreshNow(context.Background())
	require.Error(t, err)
	assert.Nil(t, p.Current())
	assert.False(t, p.Loading())
}

func TestPoller_StartAndStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := script(stored("T0"), stored("T0"), stored("T1"))
	r := &recorder{}
	p := New[rec](f, r, every(5*time.Millisecond), zaptest.NewLogger(t))

	require.NoError(t, p.Start(context.Background()))
	assert.ErrorIs(t, p.Start(context.Background()), ErrAlreadyRunning)

	require.Eventually(t, func() bool {
		return len(r.Seen()) == 1
	}, time.Second, 5*time.Millisecond)

	p.Stop()
	p.Stop()

	calls := f.Calls()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, calls, f.Calls(), "no reads after Stop returns")
	assert.Equal(t, []string{"T1"}, r.Seen())
}

func TestPoller_FailingTickKeepsSchedule(t *testing.T) {
	defer goleak.VerifyNone(t)

	f := &scriptFetcher{steps: []step{
		{err: errors.New("timeout")},
		{err: errors.New("timeout")},
		{update: stored("T0")},
	}}
	p := New[rec](f, nil, every(5*time.Millisecond), zaptest.NewLogger(t))

	require.NoError(t, p.Start(context.Background()))
	defer p.Stop()

	require.Eventually(t, func() bool {
		return p.Current() != nil
	}, time.Second, 5*time.Millisecond)
	assert.GreaterOrEqual(t, f.Calls(), int32(3))
}

func TestPoller_StopWithoutStart(t *testing.T) {
	p := New[rec](script(stored("T0")), nil, every(time.Hour), nil)
	p.Stop()
}

func TestPoller_RestartAfterStop(t *testing.T) {
	defer goleak.VerifyNone(t)

	p := New[rec](script(stored("T0")), nil, every(time.Hour), nil)
	require.NoError(t, p.Start(context.Background()))
	p.Stop()
	require.NoError(t, p.Start(context.Background()))
	p.Stop()
}

func TestPoller_ParentContextCancel(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	f := script(stored("T0"))
	p := New[rec](f, nil, every(5*time.Millisecond), nil)
	require.NoError(t, p.Start(ctx))

	cancel()

	// Once the loop has wound down, the poller can be started again.
	require.Eventually(t, func() bool {
		err := p.Start(context.Background())
		if err != nil {
			assert.ErrorIs(t, err, ErrAlreadyRunning)
		}
		return err == nil
	}, time.Second, 5*time.Millisecond)

	require.ErrorIs(t, p.Start(context.Background()), ErrAlreadyRunning)
	p.Stop()
	p.Stop()
}

func TestParseSchedule(t *testing.T) {
	s, err := ParseSchedule("@every 10s")
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, now.Add(10*time.Second), s.Next(now))

	_, err = ParseSchedule("sometimes")
	require.Error(t, err)
}
