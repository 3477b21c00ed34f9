package exporters

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	headerHost       = "host"
	headerSource     = "source"
	headerSourceType = "sourcetype"
	headerCollection = "collection"
)

type kafkaMessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
}

type kafkaSink struct {
	writer kafkaMessageWriter
}

// NewKafkaWriter returns a synchronous writer that hashes message keys so that all exports of
// one transaction land on the same partition.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: 50 * time.Millisecond,
	}
}

// NewKafkaSink publishes one message per transaction: key is the transaction id, value the JSON
// document, and the metadata travels as headers.
func NewKafkaSink(writer kafkaMessageWriter) Sink {
	return &kafkaSink{writer: writer}
}

func (s *kafkaSink) Submit(ctx context.Context, collection string, meta Metadata, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	headers := []kafka.Header{
		{Key: headerHost, Value: []byte(meta.Host)},
		{Key: headerSource, Value: []byte(meta.Source)},
		{Key: headerSourceType, Value: []byte(meta.SourceType)},
		{Key: headerCollection, Value: []byte(collection)},
	}

	msgs := make([]kafka.Message, 0, len(docs))
	for _, doc := range docs {
		value, err := json.Marshal(doc.Fields)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction %s: %w", doc.Key, err)
		}
		msgs = append(msgs, kafka.Message{Key: []byte(doc.Key), Value: value, Headers: headers})
	}

	if err := s.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("failed to write %d messages: %w", len(msgs), err)
	}
	return nil
}
