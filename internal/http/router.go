package http

import (
	"net/http"

	"kv-transactions/internal/exporters"
	"kv-transactions/internal/ingestors"
	"kv-transactions/internal/shared/loggers"
	"kv-transactions/internal/shared/metrics"

	"github.com/go-chi/chi/v5"
)

// NewRouter creates and configures the HTTP router.
func NewRouter(ingestionService ingestors.IngestionService, exportService exporters.ExportService, httpLogger loggers.Logger) http.Handler {
	router := chi.NewRouter()
	setupMiddleware(router, httpLogger)

	ingestTransactionsHandler := NewIngestTransactionsHandler(ingestionService)
	exportTransactionsHandler := NewExportTransactionsHandler(exportService)

	router.Route("/collections/{collection}", func(r chi.Router) {
		r.Post("/transactions", errorHandlingAdapter(ingestTransactionsHandler))
		r.Post("/export", errorHandlingAdapter(exportTransactionsHandler))
	})
	router.Get("/metrics", metrics.PromHTTP.Handler().ServeHTTP)

	return router
}
