package exporters

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"kv-transactions/internal/shared/filestorages"
	"kv-transactions/internal/shared/ulid"
)

const exportsDir = "exports"

type fileSink struct {
	fileStorage filestorages.FileStorage
	now         func() time.Time
}

// NewFileSink writes every export to its own JSON-lines file, exports/<collection>/<ulid>.jsonl.
// File names are stamped with now(), so listing a collection's exports yields them in export order.
// Each line is an event envelope:
//
//	{"time":"1700000000.5","host":"sh-1","source":"web_txn","sourcetype":"web_txn","event":{...}}
func NewFileSink(fileStorage filestorages.FileStorage, now func() time.Time) Sink {
	if now == nil {
		now = time.Now
	}
	return &fileSink{fileStorage: fileStorage, now: now}
}

type fileEnvelope struct {
	Time string `json:"time,omitempty"`
	Metadata
	Event map[string]any `json:"event"`
}

func (s *fileSink) Submit(ctx context.Context, collection string, meta Metadata, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, doc := range docs {
		if err := enc.Encode(fileEnvelope{Time: doc.Time, Metadata: meta, Event: doc.Fields}); err != nil {
			return fmt.Errorf("failed to encode transaction %s: %w", doc.Key, err)
		}
	}

	key := fmt.Sprintf("%s/%s/%s.jsonl", exportsDir, collection, ulid.NewULIDAt(s.now()))
	if _, err := s.fileStorage.Put(ctx, key, &buf, filestorages.PutOptions{AllowOverwrite: false}); err != nil {
		return fmt.Errorf("failed to put export file: %w", err)
	}
	return nil
}
