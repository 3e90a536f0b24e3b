// Package metrics provides Prometheus metrics for hwddns.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Namespace prefixes every metric name.
const Namespace = "hwddns"

var (
	// BuildInfo is always 1, labelled with build metadata.
	BuildInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "build_info",
		Help:      "Build information about hwddns.",
	}, []string{"version", "go_version"})

	// APIRequestsTotal counts signed API calls by operation and outcome.
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "api_requests_total",
		Help:      "Total number of Huawei Cloud DNS API requests.",
	}, []string{"operation", "status"})

	// APIRequestDuration observes API call latency by operation.
	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Duration of Huawei Cloud DNS API requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// RecordActionsTotal counts per-record decisions (create, update, unchanged).
	RecordActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "record_actions_total",
		Help:      "Total number of record set actions by action and status.",
	}, []string{"action", "status"})

	// CacheLookupsTotal counts record cache lookups by result (hit, miss).
	CacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cache_lookups_total",
		Help:      "Total number of record cache lookups.",
	}, []string{"result"})

	// CyclesTotal counts update cycles by outcome.
	CyclesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "cycles_total",
		Help:      "Total number of update cycles.",
	}, []string{"status"})

	// CycleDuration observes the duration of full update cycles.
	CycleDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: Namespace,
		Name:      "cycle_duration_seconds",
		Help:      "Duration of update cycles.",
		Buckets:   prometheus.DefBuckets,
	})

	// LastSuccessTimestamp is the unix time of the last cycle without failures.
	LastSuccessTimestamp = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: Namespace,
		Name:      "last_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful update cycle.",
	})

	// AddressLookupsTotal counts public address discoveries by source and outcome.
	AddressLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "address_lookups_total",
		Help:      "Total number of public address lookups.",
	}, []string{"source", "status"})
)

// SetBuildInfo records the running version.
func SetBuildInfo(version, goVersion string) {
	BuildInfo.WithLabelValues(version, goVersion).Set(1)
}

// ObserveAPIRequest records one API call.
func ObserveAPIRequest(operation string, start time.Time, err error) {
	APIRequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	APIRequestsTotal.WithLabelValues(operation, statusLabel(err)).Inc()
}

// ObserveCycle records one update cycle.
func ObserveCycle(start time.Time, err error) {
	CycleDuration.Observe(time.Since(start).Seconds())
	CyclesTotal.WithLabelValues(statusLabel(err)).Inc()
	if err == nil {
		LastSuccessTimestamp.SetToCurrentTime()
	}
}

func statusLabel(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
