// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CommandsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_commands_processed_total",
			Help: "Total number of commands processed by status",
		},
		[]string{"status", "provider"},
	)

	CommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "agent_command_duration_seconds",
			Help: "Duration of command processing in seconds",
		},
		[]string{"provider"},
	)

	ProviderErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "agent_provider_errors_total",
			Help: "Total number of provider parse failures",
		},
		[]string{"provider", "error_code"},
	)

	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_cache_hits_total",
			Help: "Total number of parse-result cache hits",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "agent_cache_misses_total",
			Help: "Total number of parse-result cache misses",
		},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "agent_active_requests",
			Help: "Number of command requests currently in flight",
		},
	)
)
