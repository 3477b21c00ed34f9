package http

import (
	"encoding/json"
	"io"
	"net/http"

	"kv-transactions/internal/exporters"

	"github.com/go-chi/chi/v5"
)

const maxExportRequestBytes = 64 * 1024

type exportTransactionsHandler struct {
	exportService exporters.ExportService
}

func NewExportTransactionsHandler(exportService exporters.ExportService) AppHttpHandler {
	return &exportTransactionsHandler{
		exportService: exportService,
	}
}

// Handle processes POST /collections/{collection}/export requests.
func (h *exportTransactionsHandler) Handle(w http.ResponseWriter, r *http.Request) error {
	var req exporters.ExportRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxExportRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return errInvalidBody(err)
	}
	if queryParam(r, queryTestMode) != "" {
		testMode, err := parseBool(r, queryTestMode)
		if err != nil {
			return err
		}
		req.TestMode = testMode
	}

	result, err := h.exportService.Export(r.Context(), chi.URLParam(r, paramCollection), req)
	if err != nil {
		return err
	}

	writeJSON(w, http.StatusOK, result)
	return nil
}
