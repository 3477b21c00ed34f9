package http

import (
	"net/http"

	"kv-transactions/internal/shared/loggers"
	"kv-transactions/internal/shared/svcerrors"

	"github.com/go-chi/chi/v5"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	RequestID        string `json:"requestId"`
	Collection       string `json:"collection,omitempty"`
	ErrorCategory    string `json:"errorCategory"`
	ErrorCode        string `json:"errorCode"`
	ErrorDescription string `json:"errorDescription"`
}

// errorHandlingAdapter turns the error of an AppHttpHandler into an ErrorResponse. Errors that are
// not ServiceErrors are reported as SYS_9001.
func errorHandlingAdapter(httpHandler AppHttpHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := httpHandler.Handle(w, r)
		if err == nil {
			return
		}

		svcErr, ok := svcerrors.AsServiceError(err)
		if !ok {
			svcErr = svcerrors.NewInternalErrorUndefined(err)
		}

		if svcErr.IsInternalError() {
			event := loggers.Ctx(r.Context()).Error().
				Err(svcErr.Cause).
				Str(loggers.FieldErrorCode, svcErr.Code).
				Str(loggers.FieldHttpPath, r.URL.Path)
			if collection := chi.URLParam(r, paramCollection); collection != "" {
				event = event.Str(loggers.FieldCollection, collection)
			}
			event.Msg("internal error serving request")
		}

		writeErrorResponse(w, r, svcErr)
	}
}

func writeErrorResponse(w http.ResponseWriter, r *http.Request, svcErr *svcerrors.ServiceError) {
	// middlewares read the error back for metrics and the completion log
	if appWriter, ok := w.(*appResponseWriter); ok {
		appWriter.SetServiceError(svcErr)
	}

	collection := chi.URLParam(r, paramCollection)
	metricHTTPErrorsTotal.WithLabelValues(svcErr.Category, svcErr.Code).Inc()

	loggers.Ctx(r.Context()).Debug().
		Str(loggers.FieldErrorCode, svcErr.Code).
		Str(loggers.FieldErrorCategory, svcErr.Category).
		Str("error_message", svcErr.Message).
		Int(loggers.FieldHttpStatus, svcErr.HttpStatusCode).
		Msg("error response")

	writeJSON(w, svcErr.HttpStatusCode, ErrorResponse{
		RequestID:        requestID(r),
		Collection:       collection,
		ErrorCategory:    svcErr.Category,
		ErrorCode:        svcErr.Code,
		ErrorDescription: svcErr.Message,
	})
}
