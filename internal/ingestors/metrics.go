package ingestors

import (
	"kv-transactions/internal/shared/metrics"
)

var (
	metricBatchIngestedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "batch_ingested_total",
		},
		[]string{metrics.FieldErrorCode},
	)

	metricEventsIngestedTotal = metrics.NewCounter(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubIngestion,
			Name:      "events_ingested_total",
		},
	)
)
