package stores

import (
	"context"
	"fmt"

	"kv-transactions/internal/collections"
	"kv-transactions/internal/models"
)

// TransactionWriter upserts transaction records in fixed-size groups, one request per group,
// in order. Failed groups are not retried and groups written before a failure stay written.
//
//go:generate mockgen -source=transaction_writer.go -destination=./mocks/transaction_writer_mock.go -package=mocks
type TransactionWriter interface {
	Write(ctx context.Context, collection collections.Collection, records []*models.TransactionRecord) error
}

type transactionWriter struct {
	batchSize int
}

func NewTransactionWriter(batchSize int) TransactionWriter {
	if batchSize < 1 {
		batchSize = 1
	}
	return &transactionWriter{batchSize: batchSize}
}

func (w *transactionWriter) Write(ctx context.Context, collection collections.Collection, records []*models.TransactionRecord) error {
	groups := (len(records) + w.batchSize - 1) / w.batchSize
	for g := 0; g < groups; g++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		start := g * w.batchSize
		end := min(start+w.batchSize, len(records))
		if err := collection.BatchSave(ctx, records[start:end]); err != nil {
			metricWriteBatchesTotal.WithLabelValues(resultError).Inc()
			return fmt.Errorf("write group %d of %d (records %d-%d): %w", g+1, groups, start, end-1, err)
		}
		metricWriteBatchesTotal.WithLabelValues(resultOK).Inc()
	}
	return nil
}
