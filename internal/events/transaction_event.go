package events

import (
	"kv-transactions/internal/models"
)

// TransactionEvent is one event read from the stream, routed to the partition that owns its
// transaction id. Events without an id still travel through the queue under an empty key so that
// the aggregation run reports them as skipped.
//
// Example kafka message value:
//
//	{
//	  "_time": "1700000000.25",
//	  "session_id": "s-42",
//	  "status": "ok",
//	  "bytes": 512
//	}
//
// With transaction id field "session_id" the event is routed by key "s-42"; every event of that
// session lands in the same partition and is folded by the same worker, one batch at a time.
type TransactionEvent struct {
	TransactionID string
	Event         models.Event

	// Origin of the message, for logs.
	Topic     string
	Partition int
	Offset    int64
}
