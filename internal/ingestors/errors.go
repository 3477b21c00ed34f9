package ingestors

import (
	"kv-transactions/internal/shared/svcerrors"
)

// IngestionService errors
const (
	codeValidationFailed = "ING_1000"
)

// errValidationFailed returns an error for validation failures.
func errValidationFailed(msg string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeValidationFailed, msg, cause)
}
