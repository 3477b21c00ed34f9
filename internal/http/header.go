package http

import (
	"net/http"
	"strings"
)

const (
	headerRequestID   = "x-request-id"
	headerContentType = "content-type"

	paramCollection    = "collection"
	queryTransactionID = "transaction_id"
	queryTestMode      = "testmode"
	queryAccumulate    = "accumulate"
	queryDedupe        = "dedupe"
)

func requestID(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerRequestID))
}

func setRequestID(r *http.Request, requestID string) {
	r.Header.Set(headerRequestID, requestID)
}

func contentType(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(headerContentType))
}

func queryParam(r *http.Request, name string) string {
	return strings.TrimSpace(r.URL.Query().Get(name))
}
