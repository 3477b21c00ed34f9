package streams

import (
	"context"
	"fmt"
	"runtime/debug"
	"strconv"
	"sync"
	"time"

	"kv-transactions/internal/aggregators"
	"kv-transactions/internal/events"
	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/loggers"
	"kv-transactions/internal/shared/metrics"
	"kv-transactions/internal/shared/svcerrors"
	"kv-transactions/internal/shared/ulid"
)

const (
	defaultBatchSize     = 500
	defaultFlushInterval = time.Second
)

// ConsumerOptions configures the aggregation runs of the stream workers.
type ConsumerOptions struct {
	Run           aggregators.RunOptions
	BatchSize     int
	FlushInterval time.Duration
}

//go:generate mockgen -source=event_consumer.go -destination=./mocks/event_consumer_mock.go -package=mocks
type EventConsumer interface {
	Start(ctx context.Context)
	Stop()
}

type eventConsumer struct {
	queue  *PartitionedQueue[events.TransactionEvent]
	driver aggregators.AggregationDriver
	opts   ConsumerOptions

	wg sync.WaitGroup

	stopOnce sync.Once
	stopCh   chan struct{}

	logger loggers.Logger
}

func NewEventConsumer(queue *PartitionedQueue[events.TransactionEvent], driver aggregators.AggregationDriver, opts ConsumerOptions, logger loggers.Logger) EventConsumer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	if opts.FlushInterval <= 0 {
		opts.FlushInterval = defaultFlushInterval
	}
	return &eventConsumer{
		queue:  queue,
		driver: driver,
		opts:   opts,
		stopCh: make(chan struct{}),
		logger: logger,
	}
}

// Start spawns 1 worker goroutine per partition.
// A worker collects events until the batch is full or the flush interval ticks, then folds the
// batch with one aggregation run.
func (consumer *eventConsumer) Start(ctx context.Context) {
	for partitionIndex := 0; partitionIndex < consumer.queue.PartitionCount(); partitionIndex++ {
		ch := consumer.queue.partition(partitionIndex)
		consumer.wg.Add(1)
		go func() {
			defer consumer.wg.Done()

			consumer.runPartitionWorker(ctx, partitionIndex, ch)
		}()
	}
}

// Stop asks the workers to flush what they buffered and waits for them.
func (consumer *eventConsumer) Stop() {
	consumer.stopOnce.Do(func() { close(consumer.stopCh) })
	consumer.wg.Wait()
}

func (consumer *eventConsumer) runPartitionWorker(ctx context.Context, partitionIndex int, ch <-chan events.TransactionEvent) {
	ticker := time.NewTicker(consumer.opts.FlushInterval)
	defer ticker.Stop()

	batch := make([]models.Event, 0, consumer.opts.BatchSize)
	flush := func(ctx context.Context) {
		if len(batch) == 0 {
			return
		}
		consumer.process(ctx, partitionIndex, batch)
		batch = make([]models.Event, 0, consumer.opts.BatchSize)
	}
	// drain takes whatever is already buffered without waiting for more.
	drain := func(ctx context.Context) {
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					flush(ctx)
					return
				}
				batch = append(batch, event.Event)
				if len(batch) >= consumer.opts.BatchSize {
					flush(ctx)
				}
			default:
				flush(ctx)
				return
			}
		}
	}

	for {
		select {
		case <-ctx.Done():
			drain(context.WithoutCancel(ctx))
			return
		case <-consumer.stopCh:
			drain(ctx)
			return
		case event, ok := <-ch:
			if !ok {
				flush(ctx)
				return
			}
			batch = append(batch, event.Event)
			if len(batch) >= consumer.opts.BatchSize {
				flush(ctx)
			}
		case <-ticker.C:
			flush(ctx)
		}
	}
}

func (consumer *eventConsumer) process(ctx context.Context, partitionIndex int, batch []models.Event) {
	collection := consumer.opts.Run.Collection
	defer func() {
		if r := recover(); r != nil {
			loggers.Ctx(ctx).Error().
				Bytes(loggers.FieldErrorStack, debug.Stack()).
				Msg("consumer panic recovered")

			var panicErr error
			if err, ok := r.(error); ok {
				panicErr = err
			} else {
				panicErr = fmt.Errorf("%v", r)
			}

			svcErr := svcerrors.NewInternalErrorPanic(panicErr)
			metricBatchesProcessedTotal.WithLabelValues(collection, svcErr.Code).Inc()
		}
	}()

	ctx = consumer.logger.With().
		Str(loggers.FieldPartitionId, strconv.Itoa(partitionIndex)).
		Str(loggers.FieldRequestID, ulid.NewULID()).
		Logger().WithContext(ctx)

	result, svcErr := consumer.driver.Run(ctx, consumer.opts.Run, batch)
	if svcErr != nil {
		metricBatchesProcessedTotal.WithLabelValues(collection, svcErr.Code).Inc()
		loggers.Ctx(ctx).Error().Err(svcErr).Str(loggers.FieldErrorCode, svcErr.Code).
			Msgf("failed to fold %d events", len(batch))
		return
	}
	metricBatchesProcessedTotal.WithLabelValues(collection, metrics.ValueNoError).Inc()
	loggers.Ctx(ctx).Debug().Msgf("folded %d events into %d transactions", len(batch), len(result.Transactions))
}
