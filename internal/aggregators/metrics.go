package aggregators

import (
	"kv-transactions/internal/shared/metrics"
)

const (
	eventResultMerged    = "merged"
	eventResultDuplicate = "duplicate"
	eventResultSkipped   = "skipped"
)

var (
	// metricEventsProcessedTotal counts folded events by outcome:
	//   - merged: the event changed its transaction
	//   - duplicate: the event's fingerprint was already in the transaction, nothing changed
	//   - skipped: the event had no transaction id or an unparseable _time
	metricEventsProcessedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "events_processed_total",
		},
		[]string{"result"},
	)

	// metricTransactionsCreatedTotal counts transactions that did not exist in the collection
	// before the run. Dry runs are included since nothing tells them apart before the write.
	metricTransactionsCreatedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "transactions_created_total",
		},
		[]string{"collection"},
	)

	metricRunDurationSeconds = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubAggregation,
			Name:      "run_duration_seconds",
			Buckets:   metrics.DefBuckets,
		},
		[]string{"dry_run", metrics.FieldErrorCode},
	)
)
