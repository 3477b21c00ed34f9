package stores

import (
	"kv-transactions/internal/shared/metrics"
)

const (
	resultOK    = "ok"
	resultError = "error"
)

var (
	// metricLookupChunksTotal counts lookup queries, one per id chunk.
	metricLookupChunksTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStore,
			Name:      "lookup_chunks_total",
		},
		[]string{"result"},
	)

	// metricWriteBatchesTotal counts batch upserts, one per write group.
	metricWriteBatchesTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubStore,
			Name:      "write_batches_total",
		},
		[]string{"result"},
	)
)
