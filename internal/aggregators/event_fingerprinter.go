package aggregators

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"

	"kv-transactions/internal/models"
)

// EventFingerprinter computes the content hash used to detect events that were already folded
// into a transaction. Aggregation output fields are ignored, so an event and the record it
// produced hash differently from each other but identically across replays.
type EventFingerprinter interface {
	Fingerprint(event models.Event) string
}

type eventFingerprinter struct{}

func NewEventFingerprinter() EventFingerprinter {
	return &eventFingerprinter{}
}

func (f *eventFingerprinter) Fingerprint(event models.Event) string {
	semantic := make(map[string]string, len(event))
	for k, v := range event {
		if models.IsDerivedField(k) {
			continue
		}
		semantic[k] = v
	}

	// encoding/json writes map keys sorted, which makes the digest independent of field order.
	data, err := json.Marshal(semantic)
	if err != nil {
		// map[string]string always marshals
		panic(err)
	}
	sum := md5.Sum(data)
	return hex.EncodeToString(sum[:])
}
