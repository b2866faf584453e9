/*
Package metrics exposes Prometheus metrics and health checks for cybershield.

All collectors are registered with the default registry at init and are
served by Handler. The store records:

	cybershield_store_writes_total{collection,result}
	cybershield_store_decode_failures_total{collection}
	cybershield_store_op_duration_seconds{op}
	cybershield_quota_degradations_total{stage,result}
	cybershield_ledger_ops_total{op,result}
	cybershield_points_awarded_total
	cybershield_resets_total{scope}
	cybershield_events_delivered_total{channel}
	cybershield_events_dropped_total{channel}

Collection sizes are sampled by a Collector:

	cybershield_collection_items{collection}
	cybershield_collection_bytes{collection}

# Health

HealthHandler and ReadyHandler report component state as JSON. The backend
component is critical: readiness fails while the last backend call failed.

	metrics.UpdateComponent(metrics.ComponentBackend, false, err.Error())
	http.Handle("/ready", metrics.ReadyHandler())

# Timing

	timer := metrics.NewTimer()
	defer timer.ObserveDurationVec(metrics.StoreOpDuration, "ledger.submit")
*/
package metrics
