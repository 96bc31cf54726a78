package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/localink/localink-backend/internal/poller"
	"github.com/localink/localink-backend/internal/relay/domain"
	relayhttp "github.com/localink/localink-backend/internal/relay/http"
)

const (
	variantBusiness = "business"
	variantConsumer = "consumer"
)

func validateVariant(v string) error {
	switch v {
	case variantBusiness, variantConsumer:
		return nil
	default:
		return fmt.Errorf("unknown variant %q (want business or consumer)", v)
	}
}

func runFetch(ctx context.Context, out io.Writer) error {
	if variant == variantConsumer {
		return fetchOnce[domain.ConsumerRecord](ctx, out, relayhttp.NewClient[domain.ConsumerRecord](relayURL, timeout))
	}
	return fetchOnce[domain.Record](ctx, out, relayhttp.NewClient[domain.Record](relayURL, timeout))
}

func fetchOnce[T poller.Stamped](ctx context.Context, out io.Writer, client poller.Fetcher[T]) error {
	u, err := client.Fetch(ctx)
	if err != nil {
		return err
	}
	return printUpdate(out, u.Record, u.HasNewData)
}

func runWatch(ctx context.Context, out io.Writer, in io.Reader) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched, err := poller.ParseSchedule(schedule)
	if err != nil {
		return err
	}

	if variant == variantConsumer {
		return watch[domain.ConsumerRecord](ctx, out, in, relayhttp.NewClient[domain.ConsumerRecord](relayURL, timeout), sched)
	}
	return watch[domain.Record](ctx, out, in, relayhttp.NewClient[domain.Record](relayURL, timeout), sched)
}

// watch runs the poller until ctx ends. A blank line on in triggers a
// manual refresh.
func watch[T poller.Stamped](ctx context.Context, out io.Writer, in io.Reader, fetcher poller.Fetcher[T], sched cron.Schedule) error {
	var outMu sync.Mutex
	notify := poller.NotifierFunc[T](func(record T) {
		outMu.Lock()
		defer outMu.Unlock()
		fmt.Fprintf(out, "New dashboard data received (%s)\n", record.Stamp())
		_ = printUpdate(out, record, true)
	})

	p := poller.New[T](fetcher, notify, sched, logger.Named("poller"))

	// Seed synchronously so the first screen shows whatever the relay holds.
	if err := p.RefreshNow(ctx); err != nil {
		logger.Warn("initial read failed", zap.Error(err))
	} else if current := p.Current(); current != nil {
		outMu.Lock()
		_ = printUpdate(out, *current, p.LastSeen() != "")
		outMu.Unlock()
	}

	if err := p.Start(ctx); err != nil {
		return err
	}
	defer p.Stop()

	go readRefreshes(ctx, in, p)

	<-ctx.Done()
	logger.Info("dashboard stopped")
	return nil
}

func readRefreshes[T poller.Stamped](ctx context.Context, in io.Reader, p *poller.Poller[T]) {
	if in == nil {
		return
	}
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		if strings.TrimSpace(scanner.Text()) != "" {
			continue
		}
		rctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		if err := p.RefreshNow(rctx); err != nil {
			logger.Warn("manual refresh failed", zap.Error(err))
		}
		cancel()
	}
}

func printUpdate[T poller.Stamped](out io.Writer, record T, hasNewData bool) error {
	state := "placeholder"
	if hasNewData {
		state = "live"
	}
	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	_, err = fmt.Fprintf(out, "[%s] %s\n%s\n", state, record.Stamp(), body)
	return err
}
