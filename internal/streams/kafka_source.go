package streams

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"kv-transactions/internal/events"
	"kv-transactions/internal/ingestors"
	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/loggers"

	"github.com/segmentio/kafka-go"
)

const defaultPollTimeout = 5 * time.Second

// KafkaReaderConfig holds the consumer group settings of the event topic.
type KafkaReaderConfig struct {
	Brokers []string
	Topic   string
	GroupID string
}

// NewKafkaReader creates a consumer group reader starting at the oldest retained offset.
func NewKafkaReader(cfg KafkaReaderConfig) *kafka.Reader {
	return kafka.NewReader(kafka.ReaderConfig{
		Brokers:     cfg.Brokers,
		GroupID:     cfg.GroupID,
		Topic:       cfg.Topic,
		StartOffset: kafka.FirstOffset,
		MinBytes:    1,
		MaxBytes:    10e6,
	})
}

type kafkaMessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaSource reads events from a topic and hands them to the producer.
//
//go:generate mockgen -source=kafka_source.go -destination=./mocks/kafka_source_mock.go -package=mocks
type KafkaSource interface {
	// Run blocks until ctx is cancelled or the reader is closed.
	Run(ctx context.Context) error
}

type kafkaSource struct {
	reader             kafkaMessageReader
	producer           EventProducer
	transactionIDField string
	pollTimeout        time.Duration
	logger             loggers.Logger
}

// NewKafkaSource commits a message once its event is queued. Undecodable messages are logged and
// committed so that they do not block the partition.
func NewKafkaSource(reader kafkaMessageReader, producer EventProducer, transactionIDField string, logger loggers.Logger) KafkaSource {
	return &kafkaSource{
		reader:             reader,
		producer:           producer,
		transactionIDField: transactionIDField,
		pollTimeout:        defaultPollTimeout,
		logger:             loggers.WithComponent(logger, "kafka_source"),
	}
}

func (s *kafkaSource) Run(ctx context.Context) error {
	s.logger.Info().Msgf("kafka source started, transaction id field: %s", s.transactionIDField)
	defer s.logger.Info().Msg("kafka source stopped")

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fetchCtx, cancel := context.WithTimeout(ctx, s.pollTimeout)
		msg, err := s.reader.FetchMessage(fetchCtx)
		cancel()
		if err != nil {
			switch {
			case errors.Is(err, context.DeadlineExceeded):
				continue
			case errors.Is(err, context.Canceled):
				if ctx.Err() != nil {
					return ctx.Err()
				}
				continue
			case errors.Is(err, io.EOF), errors.Is(err, kafka.ErrGroupClosed):
				return nil
			}
			s.logger.Error().Err(err).Msg("failed to fetch message")
			continue
		}

		event, err := DecodeEvent(msg.Value)
		if err != nil {
			metricMessagesConsumedTotal.WithLabelValues(msg.Topic, resultDecodeFailed).Inc()
			s.logger.Warn().Err(err).Msgf("dropped undecodable message, partition: %d, offset: %d", msg.Partition, msg.Offset)
		} else {
			te := events.TransactionEvent{
				TransactionID: event[s.transactionIDField],
				Event:         event,
				Topic:         msg.Topic,
				Partition:     msg.Partition,
				Offset:        msg.Offset,
			}
			if err := s.producer.Produce(ctx, te); err != nil {
				metricMessagesConsumedTotal.WithLabelValues(msg.Topic, resultPublishFailed).Inc()
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return fmt.Errorf("failed to publish event at offset %d: %w", msg.Offset, err)
			}
			metricMessagesConsumedTotal.WithLabelValues(msg.Topic, resultOK).Inc()
		}

		commitCtx, commitCancel := context.WithTimeout(ctx, s.pollTimeout)
		if err := s.reader.CommitMessages(commitCtx, msg); err != nil {
			if !(errors.Is(err, context.Canceled) && ctx.Err() != nil) {
				s.logger.Error().Err(err).Msgf("failed to commit offset %d", msg.Offset)
			}
		}
		commitCancel()
	}
}

// DecodeEvent decodes a message value holding one flat JSON object.
func DecodeEvent(raw []byte) (models.Event, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("invalid json: expected an object: %w", err)
	}
	if obj == nil {
		return nil, errors.New("invalid json: expected an object, got null")
	}
	return ingestors.ParseEvent(obj)
}
