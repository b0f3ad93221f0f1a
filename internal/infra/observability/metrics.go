// Package observability holds the Prometheus metrics for the offline queue
// daemon. Metrics are registered on the default registry via promauto and
// served from /metrics when enabled in config.
package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Queue Metrics ──────────────────────────────────────────────────────────

// QueueDepth tracks the current number of pending records in the queue.
var QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "kobo",
	Subsystem: "queue",
	Name:      "depth",
	Help:      "Current number of unsynced records in the offline queue.",
})

// CapturesTotal counts records captured into the queue.
var CapturesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "kobo",
	Subsystem: "queue",
	Name:      "captures_total",
	Help:      "Total records captured into the offline queue.",
})

// PersistFailuresTotal counts failed store writes during capture or flush.
var PersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "kobo",
	Subsystem: "queue",
	Name:      "persist_failures_total",
	Help:      "Total persistent-store write failures.",
})

// CorruptRestoresTotal counts corrupt persisted blobs healed on restore.
var CorruptRestoresTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "kobo",
	Subsystem: "queue",
	Name:      "corrupt_restores_total",
	Help:      "Total corrupt persisted queue blobs replaced with an empty queue.",
})

// ─── Flush Metrics ──────────────────────────────────────────────────────────

// FlushPassesTotal counts completed flush passes.
var FlushPassesTotal = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "kobo",
	Subsystem: "flush",
	Name:      "passes_total",
	Help:      "Total flush passes run over the queue.",
})

// FlushRecordsTotal counts per-record flush outcomes.
var FlushRecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kobo",
	Subsystem: "flush",
	Name:      "records_total",
	Help:      "Total per-record submit attempts during flush.",
}, []string{"outcome"}) // "synced" | "failed"

// FlushDuration observes wall time of a full flush pass.
var FlushDuration = promauto.NewHistogram(prometheus.HistogramOpts{
	Namespace: "kobo",
	Subsystem: "flush",
	Name:      "duration_seconds",
	Help:      "Duration of flush passes.",
	Buckets:   prometheus.DefBuckets,
})

// ─── Connectivity Metrics ───────────────────────────────────────────────────

// ConnectivityOnline is 1 when the monitor last saw the endpoint reachable.
var ConnectivityOnline = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "kobo",
	Subsystem: "connectivity",
	Name:      "online",
	Help:      "Whether the remote endpoint is currently considered reachable.",
})

// ConnectivityTransitionsTotal counts online/offline transitions.
var ConnectivityTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "kobo",
	Subsystem: "connectivity",
	Name:      "transitions_total",
	Help:      "Total connectivity transitions by resulting state.",
}, []string{"to"}) // "online" | "offline"

// SetConnectivity records a transition into the gauges and counters.
func SetConnectivity(online bool) {
	if online {
		ConnectivityOnline.Set(1)
		ConnectivityTransitionsTotal.WithLabelValues("online").Inc()
	} else {
		ConnectivityOnline.Set(0)
		ConnectivityTransitionsTotal.WithLabelValues("offline").Inc()
	}
}
