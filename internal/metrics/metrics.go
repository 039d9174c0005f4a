package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	scansTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "presence_scans_total",
		Help: "Scans processed, by action and outcome code.",
	}, []string{"action", "outcome"})

	scanDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "presence_scan_duration_seconds",
		Help:    "Time spent validating and recording a scan.",
		Buckets: prometheus.DefBuckets,
	})

	provisioningFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "presence_account_provisioning_failures_total",
		Help: "Login account provisioning attempts that failed.",
	})
)

// knownActions keeps label cardinality bounded; free-form actions are
// reported as "OTHER".
var knownActions = map[string]bool{
	"ARRIVAL": true, "PAUSE_START": true, "PAUSE_END": true, "DEPARTURE": true,
}

// ObserveScan records one scan outcome ("success" or a rejection code).
func ObserveScan(action, outcome string, took time.Duration) {
	if !knownActions[action] {
		action = "OTHER"
	}
	scansTotal.WithLabelValues(action, outcome).Inc()
	scanDuration.Observe(took.Seconds())
}

// ProvisioningFailed counts a failed provisioning attempt.
func ProvisioningFailed() {
	provisioningFailures.Inc()
}
