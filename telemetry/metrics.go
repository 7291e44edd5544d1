package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// WebhooksReceivedTotal counts inbound provider callbacks by relay outcome
var WebhooksReceivedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "webhooks",
		Name:      "received_total",
		Help:      "Inbound provider webhooks by provider and result kind.",
	},
	[]string{"provider", "result"},
)

var RelayDuration = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Namespace: "relay",
		Subsystem: "webhooks",
		Name:      "processing_duration_seconds",
		Help:      "Time from request receipt to relay completion.",
		Buckets:   prometheus.DefBuckets,
	},
	[]string{"provider"},
)

// GateDecisionsTotal counts subscription gate outcomes per codename
var GateDecisionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "gate",
		Name:      "decisions_total",
		Help:      "Notification gate decisions by provider, codename and decision.",
	},
	[]string{"provider", "codename", "decision"},
)

// DeliveriesTotal counts Discord sends: sent, failed or rejected by the breaker
var DeliveriesTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "relay",
		Subsystem: "delivery",
		Name:      "total",
		Help:      "Discord notification deliveries by outcome.",
	},
	[]string{"outcome"},
)

// CircuitBreakerState is 0 closed, 1 half-open, 2 open
var CircuitBreakerState = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "relay",
		Subsystem: "delivery",
		Name:      "circuit_breaker_state",
		Help:      "Delivery circuit breaker state (0 closed, 1 half-open, 2 open).",
	},
	[]string{"name"},
)

// NewMetricsRegistry creates a Prometheus registry with default and relay collectors.
func NewMetricsRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		WebhooksReceivedTotal,
		RelayDuration,
		GateDecisionsTotal,
		DeliveriesTotal,
		CircuitBreakerState,
	)
	return reg
}
