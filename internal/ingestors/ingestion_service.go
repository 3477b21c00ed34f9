package ingestors

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"kv-transactions/internal/aggregators"
	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/loggers"
	"kv-transactions/internal/shared/metrics"
	"kv-transactions/internal/shared/validators"
)

const (
	FormatJSON = "json"

	defaultMaxBatchBytes = 2 * 1024 * 1024
)

// IngestRequest carries the options of one event batch. Empty options fall back to Defaults.
type IngestRequest struct {
	Collection         string `validate:"required,max=128,excludesall=/?#"`
	TransactionIDField string `validate:"required,max=256"`
	// Accumulate is "off", "all" or a comma separated list of fields.
	Accumulate string
	Dedupe     *bool
	TestMode   bool
	Format     string
}

// Defaults holds the configured values used when a request leaves an option empty.
type Defaults struct {
	TransactionIDField string
	Accumulation       models.AccumulationSettings
	MaxBatchBytes      int
}

//go:generate mockgen -source=ingestion_service.go -destination=./mocks/ingestion_service_mock.go -package=mocks
type IngestionService interface {
	// IngestEvents folds a JSON array of flat event objects into the transactions of a collection.
	IngestEvents(ctx context.Context, req IngestRequest, r io.Reader) (*aggregators.RunResult, error)
}

type ingestionService struct {
	driver   aggregators.AggregationDriver
	defaults Defaults
	validate *validators.Validate
}

func NewIngestionService(driver aggregators.AggregationDriver, defaults Defaults) IngestionService {
	if defaults.MaxBatchBytes <= 0 {
		defaults.MaxBatchBytes = defaultMaxBatchBytes
	}
	return &ingestionService{driver: driver, defaults: defaults, validate: validators.New()}
}

func (s *ingestionService) IngestEvents(ctx context.Context, req IngestRequest, r io.Reader) (*aggregators.RunResult, error) {
	logger := loggers.Ctx(ctx)
	logger.Debug().Str(loggers.FieldCollection, req.Collection).Msgf("started ingesting events, format: %s, testmode: %t", req.Format, req.TestMode)

	opts, err := s.runOptions(req)
	if err != nil {
		metricBatchIngestedTotal.WithLabelValues(codeValidationFailed).Inc()
		return nil, err
	}

	events, err := s.readEvents(req.Format, r)
	if err != nil {
		metricBatchIngestedTotal.WithLabelValues(codeValidationFailed).Inc()
		return nil, err
	}
	metricEventsIngestedTotal.Add(float64(len(events)))

	result, svcErr := s.driver.Run(ctx, opts, events)
	if svcErr != nil {
		metricBatchIngestedTotal.WithLabelValues(svcErr.Code).Inc()
		return nil, svcErr
	}

	metricBatchIngestedTotal.WithLabelValues(metrics.ValueNoError).Inc()
	return result, nil
}

func (s *ingestionService) runOptions(req IngestRequest) (aggregators.RunOptions, error) {
	if strings.TrimSpace(req.TransactionIDField) == "" {
		req.TransactionIDField = s.defaults.TransactionIDField
	}
	if err := s.validate.Struct(req); err != nil {
		return aggregators.RunOptions{}, errValidationFailed(describeValidationError(err), err)
	}

	accumulation := s.defaults.Accumulation
	dedupe := accumulation.Dedupe
	if req.Dedupe != nil {
		dedupe = *req.Dedupe
	}
	if strings.TrimSpace(req.Accumulate) != "" {
		parsed, err := models.ParseAccumulation(req.Accumulate, dedupe)
		if err != nil {
			return aggregators.RunOptions{}, errValidationFailed(err.Error(), err)
		}
		accumulation = parsed
	} else {
		accumulation.Dedupe = dedupe
	}

	return aggregators.RunOptions{
		Collection:         req.Collection,
		TransactionIDField: req.TransactionIDField,
		Accumulation:       accumulation,
		DryRun:             req.TestMode,
	}, nil
}

func (s *ingestionService) readEvents(format string, r io.Reader) ([]models.Event, error) {
	if format != "" && !strings.Contains(strings.ToLower(format), FormatJSON) {
		return nil, errValidationFailed(fmt.Sprintf("unsupported input format: %q", format), nil)
	}
	if r == nil {
		return nil, errValidationFailed("empty request body", nil)
	}

	buf, err := io.ReadAll(io.LimitReader(r, int64(s.defaults.MaxBatchBytes)+1))
	if err != nil {
		return nil, errValidationFailed("failed to read request body", err)
	}
	if len(buf) > s.defaults.MaxBatchBytes {
		return nil, errValidationFailed(fmt.Sprintf("batch too large: must be <= %d bytes", s.defaults.MaxBatchBytes), nil)
	}

	return ParseEvents(buf)
}

// ParseEvents decodes a JSON array of flat objects. Numbers and booleans become strings, nulls are
// dropped and nested objects or arrays are rejected.
func ParseEvents(buf []byte) ([]models.Event, error) {
	dec := json.NewDecoder(bytes.NewReader(buf))
	dec.UseNumber()
	var arr []map[string]any
	if err := dec.Decode(&arr); err != nil {
		return nil, errValidationFailed("invalid json: expected an array of objects", err)
	}
	if len(arr) == 0 {
		return nil, errValidationFailed("events cannot be empty", nil)
	}

	events := make([]models.Event, 0, len(arr))
	for i, obj := range arr {
		event, err := ParseEvent(obj)
		if err != nil {
			return nil, errValidationFailed(fmt.Sprintf("item at index %d: %s", i, err.Error()), err)
		}
		events = append(events, event)
	}
	return events, nil
}

// ParseEvent converts one decoded JSON object into an event.
func ParseEvent(obj map[string]any) (models.Event, error) {
	event := make(models.Event, len(obj))
	for k, v := range obj {
		switch v.(type) {
		case nil:
			continue
		case map[string]any, []any:
			return nil, fmt.Errorf("field %q must be a string, number or boolean", k)
		}
		event[k] = models.StringValue(v)
	}
	return event, nil
}

func describeValidationError(err error) string {
	ve, ok := err.(validators.ValidationErrors)
	if !ok {
		return err.Error()
	}
	parts := make([]string, 0, len(ve))
	for _, e := range ve {
		parts = append(parts, fmt.Sprintf("%s (%s)", strings.ToLower(e.Field()), e.Tag()))
	}
	return "invalid options: " + strings.Join(parts, ", ")
}
