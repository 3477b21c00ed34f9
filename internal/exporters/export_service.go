package exporters

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kv-transactions/internal/collections"
	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/loggers"
	"kv-transactions/internal/shared/metrics"
	"kv-transactions/internal/shared/validators"

	"github.com/shopspring/decimal"
)

const (
	ActionCopy  = "copy"
	ActionMove  = "move"
	ActionFlush = "flush"

	FieldTag    = "tag_txn"
	FieldClosed = "closed_txn"

	// defaultMaxRequestBytes bounds the size of one key filter sent with a delete.
	defaultMaxRequestBytes = 70000
	day                    = 24 * time.Hour
)

// ExportRequest selects stored transactions and says what to do with them.
type ExportRequest struct {
	Action          string   `json:"action" validate:"required,oneof=copy move flush"`
	MinEvents       *int64   `json:"minEvents,omitempty" validate:"omitempty,min=0"`
	MinDuration     *float64 `json:"minDuration,omitempty" validate:"omitempty,min=0"`
	MinStartDaysAgo *int     `json:"minStartDaysAgo,omitempty" validate:"omitempty,min=0"`
	MinEndDaysAgo   *int     `json:"minEndDaysAgo,omitempty" validate:"omitempty,min=0"`
	Tag             string   `json:"tag,omitempty" validate:"max=256"`
	Closed          string   `json:"closed,omitempty" validate:"max=256"`
	TestMode        bool     `json:"testmode,omitempty"`
	Host            string   `json:"host,omitempty"`
	Source          string   `json:"source,omitempty"`
	SourceType      string   `json:"sourcetype,omitempty"`
}

type ExportResult struct {
	Action   string `json:"action"`
	Matched  int    `json:"matched"`
	Exported int    `json:"exported"`
	Deleted  int    `json:"deleted"`
	TestMode bool   `json:"testmode"`
	// Transactions is only filled in test mode.
	Transactions []map[string]any `json:"transactions,omitempty"`
}

// Defaults holds configured values used when a request leaves metadata empty.
type Defaults struct {
	Host            string
	MaxRequestBytes int
}

//go:generate mockgen -source=export_service.go -destination=./mocks/export_service_mock.go -package=mocks
type ExportService interface {
	// Export copies, moves or flushes the transactions of a collection that match the request.
	Export(ctx context.Context, collection string, req ExportRequest) (*ExportResult, error)
}

type exportService struct {
	provider collections.Provider
	sink     Sink
	defaults Defaults
	now      func() time.Time
	validate *validators.Validate
}

func NewExportService(provider collections.Provider, sink Sink, defaults Defaults, now func() time.Time) ExportService {
	if defaults.MaxRequestBytes <= 0 {
		defaults.MaxRequestBytes = defaultMaxRequestBytes
	}
	if now == nil {
		now = time.Now
	}
	return &exportService{
		provider: provider,
		sink:     sink,
		defaults: defaults,
		now:      now,
		validate: validators.New(),
	}
}

func (s *exportService) Export(ctx context.Context, collection string, req ExportRequest) (*ExportResult, error) {
	logger := loggers.Ctx(ctx).With().Str(loggers.FieldCollection, collection).Logger()

	if err := s.validate.Struct(req); err != nil {
		metricExportsTotal.WithLabelValues(req.Action, codeValidationFailed).Inc()
		return nil, errValidationFailed(describeValidationError(err), err)
	}

	coll, err := s.provider.Collection(collection)
	if err != nil {
		metricExportsTotal.WithLabelValues(req.Action, codeConfigurationCollectionUnusable).Inc()
		return nil, errConfigurationCollectionUnusable(collection, err)
	}

	now := s.now()
	records, err := coll.Query(ctx, s.filter(req, now))
	if err != nil {
		if collections.IsConfigurationError(err) {
			metricExportsTotal.WithLabelValues(req.Action, codeConfigurationCollectionUnusable).Inc()
			return nil, errConfigurationCollectionUnusable(collection, err)
		}
		metricExportsTotal.WithLabelValues(req.Action, codeInternalStoreFailed).Inc()
		return nil, errInternalStoreFailed(err)
	}
	records = filterEnded(records, req.MinEndDaysAgo, now)

	result := &ExportResult{Action: req.Action, Matched: len(records), TestMode: req.TestMode}
	docs := s.documents(records)
	if req.TestMode {
		result.Transactions = make([]map[string]any, 0, len(docs))
		for _, doc := range docs {
			result.Transactions = append(result.Transactions, doc.Fields)
		}
		metricExportsTotal.WithLabelValues(req.Action, metrics.ValueNoError).Inc()
		logger.Info().Msgf("export dry run matched %d transactions, action: %s", len(records), req.Action)
		return result, nil
	}

	if len(records) == 0 {
		metricExportsTotal.WithLabelValues(req.Action, metrics.ValueNoError).Inc()
		return result, nil
	}

	if req.Action == ActionCopy || req.Action == ActionMove {
		if err := s.sink.Submit(ctx, collection, s.metadata(req, collection), docs); err != nil {
			metricExportsTotal.WithLabelValues(req.Action, codeInternalSinkFailed).Inc()
			return nil, errInternalSinkFailed(err)
		}
		result.Exported = len(docs)
		metricTransactionsExportedTotal.WithLabelValues(collection).Add(float64(len(docs)))
	}

	if req.Action == ActionMove || req.Action == ActionFlush {
		if err := s.delete(ctx, coll, records); err != nil {
			metricExportsTotal.WithLabelValues(req.Action, codeInternalStoreFailed).Inc()
			return nil, errInternalStoreFailed(err)
		}
		result.Deleted = len(records)
		metricTransactionsDeletedTotal.WithLabelValues(collection).Add(float64(len(records)))
	}

	metricExportsTotal.WithLabelValues(req.Action, metrics.ValueNoError).Inc()
	logger.Info().Msgf("export finished, action: %s, matched: %d, exported: %d, deleted: %d",
		req.Action, result.Matched, result.Exported, result.Deleted)
	return result, nil
}

func (s *exportService) filter(req ExportRequest, now time.Time) collections.Filter {
	var filters []collections.Filter
	if req.Tag != "" {
		filters = append(filters, collections.Eq(FieldTag, req.Tag))
	}
	if req.Closed != "" {
		filters = append(filters, collections.Eq(FieldClosed, req.Closed))
	}
	if req.MinEvents != nil {
		filters = append(filters, collections.Gte(models.FieldEventCount, *req.MinEvents))
	}
	if req.MinDuration != nil {
		filters = append(filters, collections.Gte(models.FieldDuration, decimal.NewFromFloat(*req.MinDuration)))
	}
	if req.MinStartDaysAgo != nil {
		filters = append(filters, collections.Lte(models.FieldStartTime, daysAgo(now, *req.MinStartDaysAgo)))
	}
	return collections.And(filters...)
}

// filterEnded keeps the records whose last event is at least days old.
func filterEnded(records []*models.TransactionRecord, days *int, now time.Time) []*models.TransactionRecord {
	if days == nil {
		return records
	}
	cutoff := daysAgo(now, *days)
	out := make([]*models.TransactionRecord, 0, len(records))
	for _, r := range records {
		if r.EndTime().LessThanOrEqual(cutoff) {
			out = append(out, r)
		}
	}
	return out
}

func daysAgo(now time.Time, days int) decimal.Decimal {
	return decimal.New(now.Add(-time.Duration(days)*day).UnixMicro(), -6)
}

func (s *exportService) metadata(req ExportRequest, collection string) Metadata {
	meta := Metadata{Host: req.Host, Source: req.Source, SourceType: req.SourceType}
	if meta.Host == "" {
		meta.Host = s.defaults.Host
	}
	if meta.Source == "" {
		meta.Source = collection
	}
	if meta.SourceType == "" {
		meta.SourceType = collection
	}
	return meta
}

func (s *exportService) documents(records []*models.TransactionRecord) []Document {
	docs := make([]Document, 0, len(records))
	for _, r := range records {
		docs = append(docs, exportDocument(r))
	}
	return docs
}

// exportDocument renders a record as searchable event: store bookkeeping, dedup state and export
// selectors are dropped, and _time is the start of the transaction.
func exportDocument(r *models.TransactionRecord) Document {
	fields := r.Document()
	for k := range fields {
		switch {
		case k == models.FieldKey, k == models.FieldUser, k == models.FieldHashes,
			k == FieldTag, k == FieldClosed, strings.HasPrefix(k, models.LatestFieldPrefix):
			delete(fields, k)
		}
	}
	start := r.StartTime.String()
	fields[models.FieldTime] = start
	return Document{Key: r.Key, Time: start, Fields: fields}
}

func (s *exportService) delete(ctx context.Context, coll collections.Collection, records []*models.TransactionRecord) error {
	keys := make([]string, 0, len(records))
	for _, r := range records {
		keys = append(keys, r.Key)
	}
	chunks := collections.KeyFilters(models.FieldKey, keys, s.defaults.MaxRequestBytes)
	for i, filter := range chunks {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := coll.Delete(ctx, filter); err != nil {
			return fmt.Errorf("delete chunk %d of %d: %w", i+1, len(chunks), err)
		}
	}
	return nil
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
	return "invalid export request: " + strings.Join(parts, ", ")
}
