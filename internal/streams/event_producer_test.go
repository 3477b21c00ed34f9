package streams

import (
	"context"
	"testing"

	"kv-transactions/internal/events"
	"kv-transactions/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventProducer_RoutesByTransactionID(t *testing.T) {
	t.Parallel()

	queue := NewPartitionedQueue[events.TransactionEvent](8, 16)
	producer := NewEventProducer(queue)
	ctx := context.Background()

	for _, ts := range []string{"1", "2", "3"} {
		err := producer.Produce(ctx, events.TransactionEvent{
			TransactionID: "s-42",
			Event:         models.Event{"sid": "s-42", "_time": ts},
		})
		require.NoError(t, err)
	}

	ch := queue.partition(partitionIndex("s-42", 8))
	require.Len(t, ch, 3)
	for _, ts := range []string{"1", "2", "3"} {
		event := <-ch
		assert.Equal(t, ts, event.Event["_time"])
	}
}
