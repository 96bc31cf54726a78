package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/localink/localink-backend/internal/metrics"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var ErrAlreadyRunning = errors.New("poller already running")

// Stamped records carry an identity used for change detection.
type Stamped interface {
	Stamp() string
}

// Update is one read of the relay. HasNewData is false for placeholder content.
type Update[T Stamped] struct {
	Record     T
	HasNewData bool
}

// identity is empty for placeholders so that regenerated default timestamps
// never look like new data.
func (u Update[T]) identity() string {
	if !u.HasNewData {
		return ""
	}
	return u.Record.Stamp()
}

type Fetcher[T Stamped] interface {
	Fetch(ctx context.Context) (Update[T], error)
}

// Poller keeps the latest relay record cached and signals when it changes.
type Poller[T Stamped] struct {
	fetcher  Fetcher[T]
	notifier Notifier[T]
	schedule cron.Schedule
	logger   *zap.Logger

	readMu sync.Mutex // serializes scheduled and manual reads

	mu       sync.Mutex
	current  *T
	lastSeen string
	seeded   bool
	loading  bool
	cancel   context.CancelFunc
	done     chan struct{}
}

func New[T Stamped](fetcher Fetcher[T], notifier Notifier[T], schedule cron.Schedule, logger *zap.Logger) *Poller[T] {
	if logger == nil {
		logger = zap.NewNop()
	}
	if notifier == nil {
		notifier = NotifierFunc[T](func(T) {})
	}
	return &Poller[T]{
		fetcher:  fetcher,
		notifier: notifier,
		schedule: schedule,
		logger:   logger,
	}
}

// ParseSchedule accepts standard cron expressions and descriptors such as "@every 10s".
func ParseSchedule(spec string) (cron.Schedule, error) {
	s, err := cron.ParseStandard(spec)
	if err != nil {
		return nil, fmt.Errorf("invalid poll schedule %q: %w", spec, err)
	}
	return s, nil
}

// Start performs one immediate read and then reads on the schedule until Stop
// is called or ctx is cancelled.
func (p *Poller[T]) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		return ErrAlreadyRunning
	}

	loopCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})

	go p.run(loopCtx, p.done)
	return nil
}

// Stop cancels the schedule and waits for the loop to exit. Safe to call more than once.
func (p *Poller[T]) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// RefreshNow performs one synchronous read outside the schedule.
func (p *Poller[T]) RefreshNow(ctx context.Context) error {
	return p.read(ctx)
}

func (p *Poller[T]) Current() *T {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.current == nil {
		return nil
	}
	v := *p.current
	return &v
}

func (p *Poller[T]) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Poller[T]) LastSeen() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

func (p *Poller[T]) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	defer p.release(done)

	p.tick(ctx)
	for {
		now := time.Now()
		timer := time.NewTimer(p.schedule.Next(now).Sub(now))

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
			p.tick(ctx)
		}
	}
}

// release clears the running state when the loop exits on its own, so a
// cancelled parent context does not block a later Start.
func (p *Poller[T]) release(done chan struct{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.done == done {
		p.cancel()
		p.cancel, p.done = nil, nil
	}
}

func (p *Poller[T]) tick(ctx context.Context) {
	if err := p.read(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		p.logger.Warn("dashboard poll failed", zap.Error(err))
		metrics.IncPollTick("error")
		return
	}
	metrics.IncPollTick("ok")
}

func (p *Poller[T]) read(ctx context.Context) error {
	p.readMu.Lock()
	defer p.readMu.Unlock()

	p.setLoading(true)
	defer p.setLoading(false)

	upd, err := p.fetcher.Fetch(ctx)
	if err != nil {
		return err
	}

	id := upd.identity()
	rec := upd.Record

	p.mu.Lock()
	if !p.seeded {
		p.current, p.lastSeen, p.seeded = &rec, id, true
		p.mu.Unlock()
		p.logger.Debug("dashboard cache seeded", zap.Bool("has_new_data", upd.HasNewData))
		return nil
	}
	if id == p.lastSeen {
		p.mu.Unlock()
		return nil
	}
	p.current, p.lastSeen = &rec, id
	p.mu.Unlock()

	if upd.HasNewData {
		p.logger.Info("new dashboard data", zap.String("stamp", id))
		p.notifier.NewData(rec)
	}
	return nil
}

func (p *Poller[T]) setLoading(v bool) {
	p.mu.Lock()
	p.loading = v
	p.mu.Unlock()
}
