package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Collection metrics
	CollectionItems = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cybershield_collection_items",
			Help: "Number of records held per collection",
		},
		[]string{"collection"},
	)

	CollectionBytes = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cybershield_collection_bytes",
			Help: "Encoded size of each collection in bytes",
		},
		[]string{"collection"},
	)

	// Store metrics
	StoreWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cybershield_store_writes_total",
			Help: "Total number of collection writes by collection and result",
		},
		[]string{"collection", "result"},
	)

	StoreDecodeFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cybershield_store_decode_failures_total",
			Help: "Stored values that could not be decoded and were read as empty",
		},
		[]string{"collection"},
	)

	QuotaDegradations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cybershield_quota_degradations_total",
			Help: "Writes retried after dropping evidence, by stage and outcome",
		},
		[]string{"stage", "result"},
	)

	StoreOpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cybershield_store_op_duration_seconds",
			Help:    "Store operation duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	// Ledger metrics
	LedgerOps = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cybershield_ledger_ops_total",
			Help: "Ledger operations by kind and result",
		},
		[]string{"op", "result"},
	)

	PointsAwarded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cybershield_points_awarded_total",
			Help: "Total detox points awarded by submissions",
		},
	)

	Resets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cybershield_resets_total",
			Help: "Bulk resets by scope",
		},
		[]string{"scope"},
	)

	// Event metrics
	EventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cybershield_events_delivered_total",
			Help: "Change notifications delivered to a subscriber",
		},
		[]string{"channel"},
	)

	EventsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cybershield_events_dropped_total",
			Help: "Change notifications dropped because a subscriber buffer was full",
		},
		[]string{"channel"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(CollectionItems)
	prometheus.MustRegister(CollectionBytes)
	prometheus.MustRegister(StoreWrites)
	prometheus.MustRegister(StoreDecodeFailures)
	prometheus.MustRegister(QuotaDegradations)
	prometheus.MustRegister(StoreOpDuration)
	prometheus.MustRegister(LedgerOps)
	prometheus.MustRegister(PointsAwarded)
	prometheus.MustRegister(Resets)
	prometheus.MustRegister(EventsPublished)
	prometheus.MustRegister(EventsDropped)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
