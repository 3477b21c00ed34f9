package streams

import (
	"context"
	"testing"
	"time"

	"kv-transactions/internal/aggregators"
	aggregatormocks "kv-transactions/internal/aggregators/mocks"
	"kv-transactions/internal/events"
	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/svcerrors"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testRunOptions = aggregators.RunOptions{
	Collection:         "web_txn",
	TransactionIDField: "sid",
	Accumulation:       models.AccumulationSettings{Mode: models.AccumulateOff},
}

func publishEvents(t *testing.T, queue *PartitionedQueue[events.TransactionEvent], times ...string) {
	t.Helper()

	for _, ts := range times {
		err := queue.Publish(context.Background(), "s-1", events.TransactionEvent{
			TransactionID: "s-1",
			Event:         models.Event{"sid": "s-1", "_time": ts},
		})
		require.NoError(t, err)
	}
}

// recordRuns makes the driver report every batch it receives on the returned channel.
func recordRuns(driver *aggregatormocks.MockAggregationDriver) <-chan []models.Event {
	runs := make(chan []models.Event, 16)
	driver.EXPECT().Run(gomock.Any(), testRunOptions, gomock.Any()).AnyTimes().
		DoAndReturn(func(ctx context.Context, opts aggregators.RunOptions, batch []models.Event) (*aggregators.RunResult, *svcerrors.ServiceError) {
			runs <- batch
			return &aggregators.RunResult{}, nil
		})
	return runs
}

func times(batch []models.Event) []string {
	out := make([]string, 0, len(batch))
	for _, e := range batch {
		out = append(out, e["_time"])
	}
	return out
}

func receive(t *testing.T, runs <-chan []models.Event) []models.Event {
	t.Helper()

	select {
	case batch := <-runs:
		return batch
	case <-time.After(5 * time.Second):
		require.FailNow(t, "timed out waiting for an aggregation run")
		return nil
	}
}

func TestEventConsumer_FlushesFullBatchesAndRemainderOnStop(t *testing.T) {
	t.Parallel()

	queue := NewPartitionedQueue[events.TransactionEvent](1, 16)
	driver := aggregatormocks.NewMockAggregationDriver(gomock.NewController(t))
	runs := recordRuns(driver)

	consumer := NewEventConsumer(queue, driver, ConsumerOptions{Run: testRunOptions, BatchSize: 2, FlushInterval: time.Hour}, zerolog.Nop())
	publishEvents(t, queue, "1", "2", "3")
	consumer.Start(context.Background())

	assert.Equal(t, []string{"1", "2"}, times(receive(t, runs)))

	consumer.Stop()
	assert.Equal(t, []string{"3"}, times(receive(t, runs)))
	assert.Empty(t, runs)
}

func TestEventConsumer_FlushesOnInterval(t *testing.T) {
	t.Parallel()

	queue := NewPartitionedQueue[events.TransactionEvent](2, 16)
	driver := aggregatormocks.NewMockAggregationDriver(gomock.NewController(t))
	runs := recordRuns(driver)

	consumer := NewEventConsumer(queue, driver, ConsumerOptions{Run: testRunOptions, BatchSize: 100, FlushInterval: 10 * time.Millisecond}, zerolog.Nop())
	consumer.Start(context.Background())
	defer consumer.Stop()

	publishEvents(t, queue, "7")
	assert.Equal(t, []string{"7"}, times(receive(t, runs)))
}

func TestEventConsumer_RecoversFromPanics(t *testing.T) {
	t.Parallel()

	queue := NewPartitionedQueue[events.TransactionEvent](1, 16)
	driver := aggregatormocks.NewMockAggregationDriver(gomock.NewController(t))
	runs := make(chan []models.Event, 4)
	gomock.InOrder(
		driver.EXPECT().Run(gomock.Any(), testRunOptions, gomock.Any()).
			DoAndReturn(func(context.Context, aggregators.RunOptions, []models.Event) (*aggregators.RunResult, *svcerrors.ServiceError) {
				panic("boom")
			}),
		driver.EXPECT().Run(gomock.Any(), testRunOptions, gomock.Any()).
			DoAndReturn(func(ctx context.Context, opts aggregators.RunOptions, batch []models.Event) (*aggregators.RunResult, *svcerrors.ServiceError) {
				runs <- batch
				return &aggregators.RunResult{}, nil
			}),
	)

	consumer := NewEventConsumer(queue, driver, ConsumerOptions{Run: testRunOptions, BatchSize: 1, FlushInterval: time.Hour}, zerolog.Nop())
	consumer.Start(context.Background())
	defer consumer.Stop()

	publishEvents(t, queue, "1", "2")
	assert.Equal(t, []string{"2"}, times(receive(t, runs)))
}

func TestEventConsumer_DrainsClosedQueue(t *testing.T) {
	t.Parallel()

	queue := NewPartitionedQueue[events.TransactionEvent](1, 16)
	driver := aggregatormocks.NewMockAggregationDriver(gomock.NewController(t))
	runs := recordRuns(driver)

	consumer := NewEventConsumer(queue, driver, ConsumerOptions{Run: testRunOptions, BatchSize: 10, FlushInterval: time.Hour}, zerolog.Nop())
	publishEvents(t, queue, "1", "2")
	queue.Close()

	consumer.Start(context.Background())
	consumer.Stop()

	assert.Equal(t, []string{"1", "2"}, times(receive(t, runs)))
}

func TestEventConsumer_FlushesWhenContextEnds(t *testing.T) {
	t.Parallel()

	queue := NewPartitionedQueue[events.TransactionEvent](1, 16)
	driver := aggregatormocks.NewMockAggregationDriver(gomock.NewController(t))
	runs := make(chan context.Context, 1)
	driver.EXPECT().Run(gomock.Any(), testRunOptions, gomock.Len(1)).
		DoAndReturn(func(ctx context.Context, opts aggregators.RunOptions, batch []models.Event) (*aggregators.RunResult, *svcerrors.ServiceError) {
			runs <- ctx
			return &aggregators.RunResult{}, nil
		})

	ctx, cancel := context.WithCancel(context.Background())
	consumer := NewEventConsumer(queue, driver, ConsumerOptions{Run: testRunOptions, BatchSize: 10, FlushInterval: time.Hour}, zerolog.Nop())
	publishEvents(t, queue, "1")
	cancel()
	consumer.Start(ctx)

	runCtx := <-runs
	consumer.Stop()
	assert.NoError(t, runCtx.Err())
}
