package streams

import (
	"context"
	"encoding/binary"
	"hash/fnv"
)

const (
	defaultNumPartitions = 8
	defaultBuffer        = 1024
)

// PartitionedQueue fans messages out to a fixed set of channels. Messages with the same
// partition key always land on the same channel.
type PartitionedQueue[T any] struct {
	partitions []chan T
}

// NewPartitionedQueue creates a queue with numPartitions channels of the given buffer size.
// Non-positive values fall back to 8 partitions of 1024 messages.
func NewPartitionedQueue[T any](numPartitions, buffer int) *PartitionedQueue[T] {
	if numPartitions <= 0 {
		numPartitions = defaultNumPartitions
	}
	if buffer <= 0 {
		buffer = defaultBuffer
	}
	channels := make([]chan T, numPartitions)
	for i := range channels {
		channels[i] = make(chan T, buffer)
	}
	return &PartitionedQueue[T]{partitions: channels}
}

func (queue *PartitionedQueue[T]) PartitionCount() int { return len(queue.partitions) }

// Publish blocks until the partition accepts msg or ctx is done.
func (queue *PartitionedQueue[T]) Publish(ctx context.Context, partitionKey string, msg T) error {
	ch := queue.partitions[partitionIndex(partitionKey, len(queue.partitions))]
	select {
	case ch <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close closes every partition. Publishing after Close panics.
func (queue *PartitionedQueue[T]) Close() {
	for _, ch := range queue.partitions {
		close(ch)
	}
}

func (queue *PartitionedQueue[T]) partition(i int) <-chan T {
	return queue.partitions[i]
}

func partitionIndex(key string, n int) int {
	hash := fnv.New32a()
	_, _ = hash.Write([]byte(key))
	sum := hash.Sum(nil)
	v := binary.LittleEndian.Uint32(sum)
	return int(v % uint32(n))
}
