package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	initOnce sync.Once

	relayWritesCounter      *prometheus.CounterVec
	relayReadsCounter       *prometheus.CounterVec
	automationCounter       *prometheus.CounterVec
	automationLatencyMetric prometheus.Histogram
	pollTicksCounter        *prometheus.CounterVec
	httpDurationMetric      *prometheus.HistogramVec
)

// Delivery outcomes for the automation notification path.
const (
	DeliveryPrimary  = "primary_ok"
	DeliveryFallback = "fallback_ok"
	DeliveryFailed   = "failed"
)

// Init registers metrics on the default Prometheus registry exactly once.
func Init() {
	initOnce.Do(func() {
		relayWritesCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_writes_total",
				Help: "Inbound automation payloads by relay variant and outcome.",
			},
			[]string{"variant", "outcome"},
		)

		relayReadsCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "relay_reads_total",
				Help: "Relay reads by variant and whether a stored record was served.",
			},
			[]string{"variant", "outcome"},
		)

		automationCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "automation_deliveries_total",
				Help: "Outbound automation notifications by event and outcome.",
			},
			[]string{"event", "outcome"},
		)

		automationLatencyMetric = prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "automation_delivery_duration_seconds",
				Help:    "Duration of a complete notification delivery, fallback included.",
				Buckets: prometheus.DefBuckets,
			},
		)

		pollTicksCounter = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dashboard_poll_ticks_total",
				Help: "Dashboard poller reads by outcome.",
			},
			[]string{"outcome"},
		)

		httpDurationMetric = prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency by route and status.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		)

		prometheus.MustRegister(
			relayWritesCounter,
			relayReadsCounter,
			automationCounter,
			automationLatencyMetric,
			pollTicksCounter,
			httpDurationMetric,
		)

		for _, outcome := range []string{DeliveryPrimary, DeliveryFallback, DeliveryFailed} {
			automationCounter.WithLabelValues("", outcome)
		}
	})
}

func IncRelayWrite(variant, outcome string) {
	Init()
	relayWritesCounter.WithLabelValues(variant, outcome).Inc()
}

func IncRelayRead(variant, outcome string) {
	Init()
	relayReadsCounter.WithLabelValues(variant, outcome).Inc()
}

func ObserveDelivery(event, outcome string, d time.Duration) {
	Init()
	automationCounter.WithLabelValues(event, outcome).Inc()
	automationLatencyMetric.Observe(d.Seconds())
}

func IncPollTick(outcome string) {
	Init()
	pollTicksCounter.WithLabelValues(outcome).Inc()
}

func ObserveHTTPRequest(method, route, status string, d time.Duration) {
	Init()
	httpDurationMetric.WithLabelValues(method, route, status).Observe(d.Seconds())
}
