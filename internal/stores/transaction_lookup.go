package stores

import (
	"context"
	"fmt"

	"kv-transactions/internal/collections"
	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/loggers"

	"golang.org/x/sync/errgroup"
)

// TransactionLookup loads the stored transaction records of a set of ids.
//
// The ids are split into $or key filters whose Filter.RequestSize stays under maxRequestBytes,
// and one query is issued per chunk, at most concurrency at a time. Every chunk must succeed before
// anything is returned; the first failing chunk cancels the others.
//
// Example: 5000 ids of 36 unreserved characters with the default 70000 byte budget become 5
// queries of at most 1093 keys.
//
//go:generate mockgen -source=transaction_lookup.go -destination=./mocks/transaction_lookup_mock.go -package=mocks
type TransactionLookup interface {
	Fetch(ctx context.Context, collection collections.Collection, ids []string) (map[string]*models.TransactionRecord, error)
}

type transactionLookup struct {
	maxRequestBytes int
	concurrency     int
}

func NewTransactionLookup(maxRequestBytes, concurrency int) TransactionLookup {
	if concurrency < 1 {
		concurrency = 1
	}
	return &transactionLookup{maxRequestBytes: maxRequestBytes, concurrency: concurrency}
}

func (l *transactionLookup) Fetch(ctx context.Context, collection collections.Collection, ids []string) (map[string]*models.TransactionRecord, error) {
	wanted := make(map[string]struct{}, len(ids))
	distinct := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := wanted[id]; ok {
			continue
		}
		wanted[id] = struct{}{}
		distinct = append(distinct, id)
	}

	chunks := collections.KeyFilters(models.FieldKey, distinct, l.maxRequestBytes)
	loggers.Ctx(ctx).Debug().
		Str(loggers.FieldCollection, collection.Name()).
		Int("ids", len(distinct)).
		Int("chunks", len(chunks)).
		Msg("looking up transactions")

	results := make([][]*models.TransactionRecord, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			records, err := collection.Query(gctx, chunk)
			if err != nil {
				metricLookupChunksTotal.WithLabelValues(resultError).Inc()
				return fmt.Errorf("lookup chunk %d of %d: %w", i+1, len(chunks), err)
			}
			metricLookupChunksTotal.WithLabelValues(resultOK).Inc()
			results[i] = records
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	found := make(map[string]*models.TransactionRecord, len(distinct))
	for _, records := range results {
		for _, record := range records {
			if record == nil {
				continue
			}
			if _, ok := wanted[record.Key]; ok {
				found[record.Key] = record
			}
		}
	}
	return found, nil
}
