// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "academy"

var (
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status code.",
	}, []string{"route", "method", "status"})

	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route and method.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"route", "method"})

	SaveFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "repository_save_failures_total",
		Help:      "Writes that could only be kept in memory, by key.",
	}, []string{"key"})

	AttendanceMarks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "attendance_marks_total",
		Help:      "Attendance marks by status and outcome.",
	}, []string{"status", "outcome"})

	StoredBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "storage_bytes",
		Help:      "Bytes held by the key-value store, keys included.",
	})

	SnapshotRebuilds = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "dashboard_snapshot_rebuilds_total",
		Help:      "Dashboard snapshot rebuilds by result.",
	}, []string{"result"})
)

// SaveFailed counts a failed write. It matches the repository save-failure hook.
func SaveFailed(key string) {
	SaveFailures.WithLabelValues(key).Inc()
}
