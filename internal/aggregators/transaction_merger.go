package aggregators

import (
	"errors"
	"fmt"

	"kv-transactions/internal/models"

	"github.com/shopspring/decimal"
)

// ErrSkippableEvent marks an event that cannot be folded. The event is dropped and the run goes on.
var ErrSkippableEvent = errors.New("skippable event")

type MergeOptions struct {
	TransactionIDField string
	Accumulation       models.AccumulationSettings
}

// TransactionMerger folds one event into one transaction record.
//
// Apply is a pure function of (prior, event, opts): prior is never modified. When the event's
// fingerprint is already in prior.Hashes, prior itself is returned with wasDuplicate set.
// A nil prior starts a new transaction.
//
// ApplyInPlace folds into a record the caller owns and returns it, so a run folding many events
// into one transaction copies the record once instead of once per event. A rejected event
// leaves the record untouched.
type TransactionMerger interface {
	Apply(prior *models.TransactionRecord, event models.Event, opts MergeOptions) (merged *models.TransactionRecord, wasDuplicate bool, err error)
	ApplyInPlace(record *models.TransactionRecord, event models.Event, opts MergeOptions) (merged *models.TransactionRecord, wasDuplicate bool, err error)
}

type transactionMerger struct {
	fingerprinter EventFingerprinter
	reducer       TimeWindowReducer
}

func NewTransactionMerger(fingerprinter EventFingerprinter, reducer TimeWindowReducer) TransactionMerger {
	return &transactionMerger{fingerprinter: fingerprinter, reducer: reducer}
}

func (m *transactionMerger) Apply(prior *models.TransactionRecord, event models.Event, opts MergeOptions) (*models.TransactionRecord, bool, error) {
	return m.apply(prior, event, opts, (*models.TransactionRecord).Clone)
}

func (m *transactionMerger) ApplyInPlace(record *models.TransactionRecord, event models.Event, opts MergeOptions) (*models.TransactionRecord, bool, error) {
	return m.apply(record, event, opts, func(r *models.TransactionRecord) *models.TransactionRecord { return r })
}

// apply validates the event against prior, then folds it into target(prior).
func (m *transactionMerger) apply(prior *models.TransactionRecord, event models.Event, opts MergeOptions, target func(*models.TransactionRecord) *models.TransactionRecord) (*models.TransactionRecord, bool, error) {
	id := event[opts.TransactionIDField]
	if id == "" {
		return nil, false, fmt.Errorf("%w: missing field %q", ErrSkippableEvent, opts.TransactionIDField)
	}
	eventTime, err := decimal.NewFromString(event[models.FieldTime])
	if err != nil {
		return nil, false, fmt.Errorf("%w: invalid %s %q: %w", ErrSkippableEvent, models.FieldTime, event[models.FieldTime], err)
	}
	if prior != nil && prior.Key != id {
		return nil, false, fmt.Errorf("record %q cannot absorb event of transaction %q", prior.Key, id)
	}

	hash := m.fingerprinter.Fingerprint(event)
	if prior != nil && prior.HasHash(hash) {
		return prior, true, nil
	}

	// the window reads prior, so it is computed before an in-place target changes it
	window := m.reducer.Reduce(prior, eventTime)

	var merged *models.TransactionRecord
	if prior != nil {
		merged = target(prior)
	} else {
		merged = models.NewTransactionRecord(id)
	}
	merged.AddHash(hash)

	for field, value := range event {
		strategy := SelectStrategy(field, opts.TransactionIDField, opts.Accumulation)
		if strategy == StrategySkip {
			continue
		}
		slot := MergeField(strategy, slotOf(merged, field), value, eventTime)
		putSlot(merged, field, slot)
	}

	merged.StartTime = window.StartTime
	merged.Duration = window.Duration
	merged.EventCount = window.EventCount
	merged.Key = id
	merged.Fields[opts.TransactionIDField] = models.ScalarValue(id)

	return merged, false, nil
}

func slotOf(record *models.TransactionRecord, field string) FieldSlot {
	value, present := record.Fields[field]
	latest, hasLatest := record.LatestTimes[field]
	return FieldSlot{Value: value, LatestTime: latest, HasLatest: hasLatest, Present: present}
}

func putSlot(record *models.TransactionRecord, field string, slot FieldSlot) {
	if !slot.Present {
		return
	}
	record.Fields[field] = slot.Value
	if slot.HasLatest {
		record.LatestTimes[field] = slot.LatestTime
	} else {
		delete(record.LatestTimes, field)
	}
}
