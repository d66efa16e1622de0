package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Query outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeNotFound       = "not_found"
	OutcomeTransportError = "transport_error"
)

// QueriesTotal counts weather queries by outcome.
var QueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weather_queries_total",
	Help: "Total number of weather queries by outcome.",
}, []string{"outcome"})

// UpstreamRequestsTotal counts outbound calls by provider, operation and result.
var UpstreamRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "weather_upstream_requests_total",
	Help: "Total number of upstream requests by provider, operation and result.",
}, []string{"provider", "op", "result"})

// UpstreamUp is set by the probe job: 1 if the last probe succeeded.
var UpstreamUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Name: "weather_upstream_up",
	Help: "Whether the last probe of an upstream succeeded.",
}, []string{"provider"})

// HistoryEntries tracks the size of the search history after each write.
var HistoryEntries = promauto.NewGauge(prometheus.GaugeOpts{
	Name: "weather_history_entries",
	Help: "Number of entries in the search history.",
})
