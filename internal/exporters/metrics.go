package exporters

import (
	"kv-transactions/internal/shared/metrics"
)

var (
	metricExportsTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubExport,
			Name:      "exports_total",
		},
		[]string{"action", metrics.FieldErrorCode},
	)

	metricTransactionsExportedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubExport,
			Name:      "transactions_exported_total",
		},
		[]string{"collection"},
	)

	metricTransactionsDeletedTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubExport,
			Name:      "transactions_deleted_total",
		},
		[]string{"collection"},
	)
)
