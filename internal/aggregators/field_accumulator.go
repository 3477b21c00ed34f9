package aggregators

import (
	"slices"

	"kv-transactions/internal/models"

	"github.com/shopspring/decimal"
)

// MergeStrategy selects how a single event field is folded into a transaction.
type MergeStrategy int

const (
	StrategySkip MergeStrategy = iota
	StrategyReplaceLatest
	StrategyAppendList
	StrategyAppendDedupList
)

func (s MergeStrategy) String() string {
	switch s {
	case StrategySkip:
		return "skip"
	case StrategyReplaceLatest:
		return "replace_latest"
	case StrategyAppendList:
		return "append_list"
	case StrategyAppendDedupList:
		return "append_dedup_list"
	}
	return "unknown"
}

// FieldSlot is the stored state of one field of a transaction.
type FieldSlot struct {
	Value      models.FieldValue
	LatestTime decimal.Decimal
	HasLatest  bool
	Present    bool
}

type mergeFunc func(prior FieldSlot, value string, eventTime decimal.Decimal) FieldSlot

var mergeTable = map[MergeStrategy]mergeFunc{
	StrategySkip:            mergeSkip,
	StrategyReplaceLatest:   mergeReplaceLatest,
	StrategyAppendList:      mergeAppendList,
	StrategyAppendDedupList: mergeAppendDedupList,
}

// SelectStrategy picks the strategy of field. The transaction id, _time and every derived field
// are never accumulated.
func SelectStrategy(field, transactionIDField string, settings models.AccumulationSettings) MergeStrategy {
	if field == transactionIDField || field == models.FieldTime || models.IsDerivedField(field) {
		return StrategySkip
	}
	if !settings.Accumulates(field) {
		return StrategyReplaceLatest
	}
	if settings.Dedupe {
		return StrategyAppendDedupList
	}
	return StrategyAppendList
}

// MergeField folds value, seen on an event at eventTime, into prior. An empty value never
// overwrites what is stored.
func MergeField(strategy MergeStrategy, prior FieldSlot, value string, eventTime decimal.Decimal) FieldSlot {
	if value == "" {
		return prior
	}
	merge, ok := mergeTable[strategy]
	if !ok {
		return prior
	}
	return merge(prior, value, eventTime)
}

func mergeSkip(prior FieldSlot, _ string, _ decimal.Decimal) FieldSlot {
	return prior
}

// mergeReplaceLatest keeps the value of the newest event. On equal times the stored value wins;
// a stored value without a time marker loses to any event.
func mergeReplaceLatest(prior FieldSlot, value string, eventTime decimal.Decimal) FieldSlot {
	if prior.Present && !prior.Value.IsEmpty() && prior.HasLatest && !eventTime.GreaterThan(prior.LatestTime) {
		return prior
	}
	return FieldSlot{
		Value:      models.ScalarValue(value),
		LatestTime: eventTime,
		HasLatest:  true,
		Present:    true,
	}
}

func mergeAppendList(prior FieldSlot, value string, _ decimal.Decimal) FieldSlot {
	values := make([]string, 0, len(prior.Value.Values)+1)
	if prior.Present {
		for _, v := range prior.Value.Values {
			if v != "" {
				values = append(values, v)
			}
		}
	}
	values = append(values, value)
	return FieldSlot{Value: models.FieldValue{Values: values, IsList: true}, Present: true}
}

// mergeAppendDedupList keeps the distinct values sorted; insertion order is not preserved.
func mergeAppendDedupList(prior FieldSlot, value string, eventTime decimal.Decimal) FieldSlot {
	out := mergeAppendList(prior, value, eventTime)
	slices.Sort(out.Value.Values)
	out.Value.Values = slices.Compact(out.Value.Values)
	return out
}
