package collections

import (
	"context"
	"errors"

	"kv-transactions/internal/models"
)

var (
	// ErrCollectionNotFound means the named collection does not exist in the backend.
	ErrCollectionNotFound = errors.New("collection not found")
	// ErrInvalidResponse means the backend answered with something that is not a list of records.
	ErrInvalidResponse = errors.New("invalid collection response")
)

// Collection is a key-value collection of transaction records keyed by _key.
//
//go:generate mockgen -source=collection.go -destination=./mocks/collection_mock.go -package=mocks
type Collection interface {
	Name() string
	Query(ctx context.Context, filter Filter) ([]*models.TransactionRecord, error)
	// BatchSave upserts records by key.
	BatchSave(ctx context.Context, records []*models.TransactionRecord) error
	Delete(ctx context.Context, filter Filter) error
}

// Provider resolves collections by name.
type Provider interface {
	Collection(name string) (Collection, error)
}

// IsConfigurationError reports whether err means the collection itself is unusable
// rather than a transient failure of one request.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrCollectionNotFound) || errors.Is(err, ErrInvalidResponse)
}
