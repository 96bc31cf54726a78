package automation

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/localink/localink-backend/internal/metrics"
	"go.uber.org/zap"
)

// maxAttempts bounds delivery to one primary request and one fallback.
const maxAttempts = 2

// Dispatcher delivers envelopes in the background. Delivery outcome never
// reaches the caller; failures are logged and counted.
type Dispatcher struct {
	client *Client
	logger *zap.Logger

	mu     sync.Mutex
	closed bool // set by Wait; no new deliveries start afterwards
	wg     sync.WaitGroup
}

func NewDispatcher(client *Client, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Dispatcher{client: client, logger: logger}
}

// Dispatch starts delivery of env and returns immediately.
func (d *Dispatcher) Dispatch(env Envelope) {
	if d.client == nil || d.client.Endpoint() == "" {
		d.logger.Warn("automation webhook not configured, dropping notification", zap.String("event", env.Event))
		return
	}

	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		d.logger.Warn("dispatcher draining, dropping notification", zap.String("event", env.Event))
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()
		d.Deliver(context.Background(), env)
	}()
}

// Wait stops accepting new envelopes and blocks until every in-flight
// delivery has finished.
func (d *Dispatcher) Wait() {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	d.wg.Wait()
}

// Deliver runs the primary request and, if that fails, exactly one fallback.
// It returns the metrics outcome label.
func (d *Dispatcher) Deliver(ctx context.Context, env Envelope) string {
	start := time.Now()
	log := d.logger.With(zap.String("event", env.Event), zap.String("user_id", env.User.ID))

	body, err := json.Marshal(env)
	if err != nil {
		log.Error("notification payload marshal failed", zap.Error(err))
		metrics.ObserveDelivery(env.Event, metrics.DeliveryFailed, time.Since(start))
		return metrics.DeliveryFailed
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt == 1 {
			_, lastErr = d.client.Primary(ctx, body)
		} else {
			lastErr = d.client.Fallback(ctx, body)
		}

		if lastErr == nil {
			outcome := metrics.DeliveryPrimary
			if attempt > 1 {
				outcome = metrics.DeliveryFallback
			}
			log.Info("notification delivered", zap.Int("attempt", attempt), zap.String("outcome", outcome))
			metrics.ObserveDelivery(env.Event, outcome, time.Since(start))
			return outcome
		}

		log.Warn("notification attempt failed", zap.Int("attempt", attempt), zap.Error(lastErr))
	}

	log.Error("notification delivery failed", zap.Error(lastErr))
	metrics.ObserveDelivery(env.Event, metrics.DeliveryFailed, time.Since(start))
	return metrics.DeliveryFailed
}
