package http

import (
	"kv-transactions/internal/shared/metrics"
)

var (
	// Labelled by route pattern, never by raw path, so collection names do not multiply series.
	metricHTTPRequestsTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubHTTP,
			Name:      "requests_total",
			Help:      "Ingest and export requests by route and outcome.",
		},
		[]string{"method", "route", "status", metrics.FieldErrorCode},
	)

	metricHTTPRequestDuration = metrics.NewHistogramVec(
		metrics.HistogramOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubHTTP,
			Name:      "request_duration_seconds",
			Help:      "Time spent serving a request, including store round trips.",
			Buckets:   metrics.DefBuckets,
		},
		[]string{"method", "route", "status", metrics.FieldErrorCode},
	)

	metricHTTPErrorsTotal = metrics.NewCounterVec(
		metrics.CounterOpts{
			Namespace: metrics.Namespace,
			Subsystem: metrics.SubHTTP,
			Name:      "error_responses_total",
			Help:      "Error responses by category (invalid_argument, configuration, internal).",
		},
		[]string{"error_category", metrics.FieldErrorCode},
	)
)
