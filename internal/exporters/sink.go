package exporters

import "context"

// Metadata describes where exported transactions come from, in the sense of a search index:
// host, source and sourcetype.
type Metadata struct {
	Host       string `json:"host,omitempty"`
	Source     string `json:"source,omitempty"`
	SourceType string `json:"sourcetype,omitempty"`
}

// Document is one exported transaction. Key is the transaction id; Fields never contain
// store bookkeeping or dedup state.
type Document struct {
	Key    string
	Time   string
	Fields map[string]any
}

// Sink receives exported transactions.
//
//go:generate mockgen -source=sink.go -destination=./mocks/sink_mock.go -package=mocks
type Sink interface {
	Submit(ctx context.Context, collection string, meta Metadata, docs []Document) error
}
