package streams

import (
	"kv-transactions/internal/shared/metrics"
)

const (
	resultOK            = "ok"
	resultDecodeFailed  = "decode_failed"
	resultPublishFailed = "publish_failed"
)

var (
	metricMessagesConsumedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "messages_consumed_total",
		},
		[]string{"topic", "result"},
	)

	metricEventsPublishedTotal = metrics.NewCounter(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "events_published_total",
		},
	)

	metricBatchesProcessedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStream,
			Name:      "batches_processed_total",
		},
		[]string{"collection", metrics.FieldErrorCode},
	)
)
