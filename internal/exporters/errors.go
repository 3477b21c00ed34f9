package exporters

import (
	"fmt"

	"kv-transactions/internal/shared/svcerrors"
)

// ExportService errors
const (
	codeValidationFailed                = "EXP_1000"
	codeConfigurationCollectionUnusable = "EXP_1001"
	codeInternalStoreFailed             = "EXP_9000"
	codeInternalSinkFailed              = "EXP_9001"
)

func errValidationFailed(msg string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewInvalidArgumentError(codeValidationFailed, msg, cause)
}

// errConfigurationCollectionUnusable returns an error when the collection is unknown or answers with
// something that is not a list of transactions.
func errConfigurationCollectionUnusable(collection string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewConfigurationError(
		codeConfigurationCollectionUnusable,
		fmt.Sprintf("collection %q is missing or unreadable", collection),
		cause,
	)
}

// errInternalStoreFailed returns an error when querying or deleting transactions fails.
func errInternalStoreFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalStoreFailed, fmt.Errorf("exportStoreFailed: %w", cause))
}

// errInternalSinkFailed returns an error when the sink rejects the exported transactions.
func errInternalSinkFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalSinkFailed, fmt.Errorf("exportSinkFailed: %w", cause))
}
