package http

import (
	"net/http"
	"strconv"

	"kv-transactions/internal/ingestors"

	"github.com/go-chi/chi/v5"
)

type AppHttpHandler interface {
	Handle(w http.ResponseWriter, r *http.Request) error
}

type ingestTransactionsHandler struct {
	ingestionService ingestors.IngestionService
}

func NewIngestTransactionsHandler(ingestionService ingestors.IngestionService) AppHttpHandler {
	return &ingestTransactionsHandler{
		ingestionService: ingestionService,
	}
}

// Handle processes POST /collections/{collection}/transactions requests. The body is a JSON array
// of events; the response carries the merged transactions and run counters.
func (h *ingestTransactionsHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	testMode, err := parseBool(r, queryTestMode)
	if err != nil {
		return err
	}
	var dedupe *bool
	if raw := queryParam(r, queryDedupe); raw != "" {
		v, err := parseBool(r, queryDedupe)
		if err != nil {
			return err
		}
		dedupe = &v
	}

	req := ingestors.IngestRequest{
		Collection:         chi.URLParam(r, paramCollection),
		TransactionIDField: queryParam(r, queryTransactionID),
		Accumulate:         queryParam(r, queryAccumulate),
		Dedupe:             dedupe,
		TestMode:           testMode,
		Format:             contentType(r),
	}
	result, err := h.ingestionService.IngestEvents(r.Context(), req, r.Body)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, result)
	return nil
}

// parseBool reads an optional boolean query parameter; absent means false.
func parseBool(r *http.Request, name string) (bool, error) {
	raw := queryParam(r, name)
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, errInvalidQuery(name, raw, err)
	}
	return v, nil
}
