package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collectors registered on the default Prometheus registry.
var (
	WebhooksReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfdc_webhooks_received_total",
		Help: "Total number of webhook payloads received, labelled by wire format.",
	}, []string{"format"})

	MessagesParsed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfdc_messages_parsed_total",
		Help: "Total number of parse attempts, labelled by event, document version and status.",
	}, []string{"event", "version", "status"})

	ParseDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "sfdc_parse_duration_ms",
		Help:    "End-to-end payload parsing latency in milliseconds.",
		Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
	})

	IdentityLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfdc_identity_lookups_total",
		Help: "Total number of identity lookups, labelled by outcome (found, not_found, error).",
	}, []string{"outcome"})

	ConfigReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sfdc_config_reloads_total",
		Help: "Total number of settings reloads, labelled by status.",
	}, []string{"status"})
)
