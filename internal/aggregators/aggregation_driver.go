package aggregators

import (
	"context"
	"errors"
	"strconv"
	"time"

	"kv-transactions/internal/collections"
	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/loggers"
	"kv-transactions/internal/shared/metrics"
	"kv-transactions/internal/shared/svcerrors"
	"kv-transactions/internal/shared/ulid"
	"kv-transactions/internal/stores"

	"github.com/shopspring/decimal"
)

const (
	phaseCollecting    = "collecting"
	phaseFingerprinted = "fingerprinted"
	phaseLookedUp      = "looked_up"
	phaseMerging       = "merging"
	phaseEmitting      = "emitting"
	phasePersisted     = "persisted"
)

type RunOptions struct {
	Collection         string
	TransactionIDField string
	Accumulation       models.AccumulationSettings
	// DryRun computes and returns the merged transactions without writing them.
	DryRun bool
}

type RunResult struct {
	Transactions []*models.TransactionRecord `json:"transactions"`
	Received     int                         `json:"received"`
	Merged       int                         `json:"merged"`
	Duplicates   int                         `json:"duplicates"`
	Skipped      int                         `json:"skipped"`
	Persisted    bool                        `json:"persisted"`
}

// AggregationDriver folds one batch of events into the transactions of a collection.
//
// A run goes through the phases collecting, fingerprinted, looked_up, merging, emitting and
// persisted. Events are merged in arrival order against a snapshot of the stored transactions
// loaded once per run; each transaction touched by the batch is emitted once, in the order its
// id first appeared, and written back unless DryRun is set. A batch without any transaction id
// never touches the collection.
//
//go:generate mockgen -source=aggregation_driver.go -destination=./mocks/aggregation_driver_mock.go -package=mocks
type AggregationDriver interface {
	Run(ctx context.Context, opts RunOptions, events []models.Event) (*RunResult, *svcerrors.ServiceError)
}

type aggregationDriver struct {
	provider collections.Provider
	lookup   stores.TransactionLookup
	writer   stores.TransactionWriter
	merger   TransactionMerger
	now      func() time.Time
}

func NewAggregationDriver(provider collections.Provider, lookup stores.TransactionLookup, writer stores.TransactionWriter, merger TransactionMerger, now func() time.Time) AggregationDriver {
	if now == nil {
		now = time.Now
	}
	return &aggregationDriver{provider: provider, lookup: lookup, writer: writer, merger: merger, now: now}
}

func (d *aggregationDriver) Run(ctx context.Context, opts RunOptions, events []models.Event) (result *RunResult, svcErr *svcerrors.ServiceError) {
	started := d.now()
	defer func() {
		code := metrics.ValueNoError
		if svcErr != nil {
			code = svcErr.Code
		}
		metricRunDurationSeconds.WithLabelValues(strconv.FormatBool(opts.DryRun), code).Observe(d.now().Sub(started).Seconds())
	}()

	logger := loggers.Ctx(ctx).With().
		Str(loggers.FieldRunID, ulid.NewULID()).
		Str(loggers.FieldCollection, opts.Collection).
		Logger()
	ctx = logger.WithContext(ctx)

	result = &RunResult{Transactions: []*models.TransactionRecord{}, Received: len(events)}

	batch, ids := d.collect(events, opts.TransactionIDField)
	logger.Debug().Str(loggers.FieldPhase, phaseCollecting).Int("events", len(batch)).Int("ids", len(ids)).Msg("aggregation phase")
	if len(ids) == 0 {
		result.Skipped = len(batch)
		metricEventsProcessedTotal.WithLabelValues(eventResultSkipped).Add(float64(len(batch)))
		logger.Debug().Msg("no transaction ids in batch, nothing to look up")
		return result, nil
	}
	logger.Debug().Str(loggers.FieldPhase, phaseFingerprinted).Msg("aggregation phase")

	collection, err := d.provider.Collection(opts.Collection)
	if err != nil {
		return nil, errConfigurationCollectionUnusable(opts.Collection, err)
	}

	state, err := d.lookup.Fetch(ctx, collection, ids)
	if err != nil {
		if collections.IsConfigurationError(err) {
			return nil, errConfigurationCollectionUnusable(opts.Collection, err)
		}
		return nil, errInternalLookupFailed(err)
	}
	if state == nil {
		state = make(map[string]*models.TransactionRecord, len(ids))
	}
	logger.Debug().Str(loggers.FieldPhase, phaseLookedUp).Int("stored", len(state)).Msg("aggregation phase")

	existed := make(map[string]bool, len(state))
	for id := range state {
		existed[id] = true
	}

	mergeOpts := MergeOptions{TransactionIDField: opts.TransactionIDField, Accumulation: opts.Accumulation}
	logger.Debug().Str(loggers.FieldPhase, phaseMerging).Msg("aggregation phase")
	// stored records are copied on first use; later events of the run fold into the copy
	owned := make(map[string]bool, len(ids))
	for _, event := range batch {
		id := event[opts.TransactionIDField]
		record := state[id]
		if record != nil && !owned[id] {
			record = record.Clone()
		}
		merged, duplicate, err := d.merger.ApplyInPlace(record, event, mergeOpts)
		switch {
		case errors.Is(err, ErrSkippableEvent):
			result.Skipped++
			metricEventsProcessedTotal.WithLabelValues(eventResultSkipped).Inc()
			logger.Debug().Err(err).Str(loggers.FieldTransactionID, id).Msg("skipped event")
			continue
		case err != nil:
			return nil, errInternalMergeFailed(err)
		case duplicate:
			result.Duplicates++
			metricEventsProcessedTotal.WithLabelValues(eventResultDuplicate).Inc()
			continue
		}
		result.Merged++
		metricEventsProcessedTotal.WithLabelValues(eventResultMerged).Inc()
		state[id] = merged
		owned[id] = true
	}

	for _, id := range ids {
		record, ok := state[id]
		if !ok {
			continue
		}
		result.Transactions = append(result.Transactions, record)
		if !existed[id] {
			metricTransactionsCreatedTotal.WithLabelValues(opts.Collection).Inc()
		}
	}
	logger.Debug().Str(loggers.FieldPhase, phaseEmitting).Int("transactions", len(result.Transactions)).Msg("aggregation phase")

	if opts.DryRun || len(result.Transactions) == 0 {
		return result, nil
	}
	if err := d.writer.Write(ctx, collection, result.Transactions); err != nil {
		if collections.IsConfigurationError(err) {
			return nil, errConfigurationCollectionUnusable(opts.Collection, err)
		}
		return nil, errInternalWriteFailed(err)
	}
	result.Persisted = true
	logger.Debug().Str(loggers.FieldPhase, phasePersisted).Msg("aggregation phase")

	return result, nil
}

// collect copies the events, stamps a missing _time with the current time and returns the
// distinct transaction ids in order of first appearance.
func (d *aggregationDriver) collect(events []models.Event, idField string) ([]models.Event, []string) {
	batch := make([]models.Event, 0, len(events))
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, event := range events {
		e := event.Clone()
		if e[models.FieldTime] == "" {
			e[models.FieldTime] = decimal.New(d.now().UnixMicro(), -6).String()
		}
		batch = append(batch, e)

		id := e[idField]
		if id == "" {
			continue
		}
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	return batch, ids
}
