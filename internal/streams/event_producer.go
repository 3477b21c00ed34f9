package streams

import (
	"context"

	"kv-transactions/internal/events"
)

// EventProducer publishes stream events to a partitioned queue keyed by transaction id.
//
// Every event of one transaction lands in the same partition, and the consumer runs a single
// worker per partition. Within this process two batches never fold the same transaction
// concurrently, so a lookup never races a write for the same key. Different transactions spread
// over all partitions and are folded in parallel.
//
//go:generate mockgen -source=event_producer.go -destination=./mocks/event_producer_mock.go -package=mocks
type EventProducer interface {
	Produce(ctx context.Context, event events.TransactionEvent) error
}

type eventProducer struct {
	queue *PartitionedQueue[events.TransactionEvent]
}

func NewEventProducer(queue *PartitionedQueue[events.TransactionEvent]) EventProducer {
	return &eventProducer{queue: queue}
}

func (producer *eventProducer) Produce(ctx context.Context, event events.TransactionEvent) error {
	if err := producer.queue.Publish(ctx, event.TransactionID, event); err != nil {
		return err
	}
	metricEventsPublishedTotal.Inc()
	return nil
}
