package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/localink/localink-backend/internal/poller"
	"github.com/localink/localink-backend/internal/relay/domain"
	relayhttp "github.com/localink/localink-backend/internal/relay/http"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type every time.Duration

func (e every) Next(t time.Time) time.Time { return t.Add(time.Duration(e)) }

type sequenceFetcher struct {
	mu      sync.Mutex
	updates []poller.Update[domain.Record]
}

func (f *sequenceFetcher) Fetch(context.Context) (poller.Update[domain.Record], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.updates[0]
	if len(f.updates) > 1 {
		f.updates = f.updates[1:]
	}
	return u, nil
}

func TestValidateVariant(t *testing.T) {
	assert.NoError(t, validateVariant("business"))
	assert.NoError(t, validateVariant("consumer"))
	assert.Error(t, validateVariant("admin"))
}

func TestFetchOnce(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"success":true,"hasNewData":true,"data":{"timestamp":"2025-01-02T03:04:05.000Z","source":"n8n_webhook"}}`))
	}))
	defer srv.Close()

	var out bytes.Buffer
	client := relayhttp.NewClient[domain.Record](srv.URL, time.Second)
	require.NoError(t, fetchOnce[domain.Record](context.Background(), &out, client))

	assert.True(t, strings.HasPrefix(out.String(), "[live] 2025-01-02T03:04:05.000Z"))
	assert.Contains(t, out.String(), `"source": "n8n_webhook"`)
}

func TestWatch_PrintsNewData(t *testing.T) {
	logger = zaptest.NewLogger(t)

	placeholder := domain.DefaultRecord(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	live := domain.Record{Timestamp: "2025-01-02T03:04:05.000Z", Source: domain.SourceAutomation}
	fetcher := &sequenceFetcher{updates: []poller.Update[domain.Record]{
		{Record: placeholder, HasNewData: false},
		{Record: live, HasNewData: true},
	}}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	out := &syncBuffer{}
	done := make(chan error, 1)
	go func() { done <- watch[domain.Record](ctx, out, nil, fetcher, every(5*time.Millisecond)) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "New dashboard data received (2025-01-02T03:04:05.000Z)")
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	assert.True(t, strings.HasPrefix(out.String(), "[placeholder]"))
}
