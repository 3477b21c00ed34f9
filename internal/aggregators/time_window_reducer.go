package aggregators

import (
	"kv-transactions/internal/models"

	"github.com/shopspring/decimal"
)

// TimeWindow is the time span and size of a transaction.
type TimeWindow struct {
	StartTime  decimal.Decimal
	Duration   decimal.Decimal
	EventCount int64
}

// TimeWindowReducer widens the window of prior to cover one more (non-duplicate) event.
// start_time never increases and duration never decreases.
type TimeWindowReducer interface {
	Reduce(prior *models.TransactionRecord, eventTime decimal.Decimal) TimeWindow
}

type timeWindowReducer struct{}

func NewTimeWindowReducer() TimeWindowReducer {
	return &timeWindowReducer{}
}

func (r *timeWindowReducer) Reduce(prior *models.TransactionRecord, eventTime decimal.Decimal) TimeWindow {
	if prior == nil || prior.EventCount == 0 {
		return TimeWindow{StartTime: eventTime, Duration: decimal.Zero, EventCount: 1}
	}

	start := decimal.Min(prior.StartTime, eventTime)
	end := decimal.Max(prior.EndTime(), eventTime)
	return TimeWindow{
		StartTime:  start,
		Duration:   end.Sub(start),
		EventCount: prior.EventCount + 1,
	}
}
