package http

import (
	"fmt"

	"kv-transactions/internal/shared/svcerrors"
)

const (
	codeInvalidQuery = "HTTP_1000"
	codeInvalidBody  = "HTTP_1001"
)

// errInvalidQuery returns an error for a query parameter that cannot be parsed.
func errInvalidQuery(name, value string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidQuery, fmt.Sprintf("invalid %s: %q", name, value), cause)
}

// errInvalidBody returns an error for a request body that is not the expected JSON document.
func errInvalidBody(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeInvalidBody, "invalid json body", cause)
}
