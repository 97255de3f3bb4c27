// Package metrics declares the Prometheus collectors of fcalc.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Recomputes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fcalc_recomputes_total",
			Help: "Total number of calculator recomputes by input group and outcome",
		},
		[]string{"group", "outcome"},
	)

	FxFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fcalc_fx_fetches_total",
			Help: "Total number of exchange rate fetches by outcome",
		},
		[]string{"outcome"},
	)

	FxFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "fcalc_fx_fetch_duration_seconds",
			Help: "Duration of the exchange rate fetch in seconds",
		},
	)

	APIRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fcalc_api_requests_total",
			Help: "Total number of HTTP API requests by endpoint and status code",
		},
		[]string{"endpoint", "code"},
	)

	ToolCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fcalc_assistant_tool_calls_total",
			Help: "Total number of function calls made by the assistant models by function and outcome",
		},
		[]string{"function", "outcome"},
	)
)
