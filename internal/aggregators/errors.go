package aggregators

import (
	"fmt"

	"kv-transactions/internal/shared/svcerrors"
)

const (
	codeConfigurationCollectionUnusable = "AGG_1001"
	codeInternalLookupFailed            = "AGG_9000"
	codeInternalWriteFailed             = "AGG_9001"
	codeInternalMergeFailed             = "AGG_9002"
)

// errConfigurationCollectionUnusable returns an error when the collection does not exist or answers
// with something that is not a list of transactions. Rerunning does not help.
func errConfigurationCollectionUnusable(collection string, cause error) *svcerrors.ServiceError {
	return svcerrors.NewConfigurationError(
		codeConfigurationCollectionUnusable,
		fmt.Sprintf("collection %q is missing or unreadable", collection),
		cause,
	)
}

// errInternalLookupFailed returns an error when loading stored transactions fails.
func errInternalLookupFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalLookupFailed, fmt.Errorf("transactionLookupFailed: %w", cause))
}

// errInternalWriteFailed returns an error when persisting merged transactions fails.
func errInternalWriteFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalWriteFailed, fmt.Errorf("transactionWriteFailed: %w", cause))
}

func errInternalMergeFailed(cause error) *svcerrors.ServiceError {
	return svcerrors.NewInternalError(codeInternalMergeFailed, fmt.Errorf("transactionMergeFailed: %w", cause))
}
