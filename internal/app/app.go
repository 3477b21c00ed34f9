package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kv-transactions/internal/aggregators"
	"kv-transactions/internal/collections"
	"kv-transactions/internal/events"
	"kv-transactions/internal/exporters"
	internalhttp "kv-transactions/internal/http"
	"kv-transactions/internal/ingestors"
	"kv-transactions/internal/models"
	"kv-transactions/internal/shared/configs"
	"kv-transactions/internal/shared/filestorages"
	"kv-transactions/internal/shared/httpclients"
	"kv-transactions/internal/shared/loggers"
	"kv-transactions/internal/stores"
	"kv-transactions/internal/streams"
)

// App holds all application dependencies and manages lifecycle.
type App struct {
	config    *configs.Config
	appLogger loggers.Logger
	server    *http.Server

	// closers are released on shutdown after the background workers stopped.
	closers []io.Closer

	eventConsumer    streams.EventConsumer
	kafkaSource      streams.KafkaSource
	sourceDone       chan struct{}
	backgroundCtx    context.Context
	backgroundCancel context.CancelFunc
}

// New creates and initializes a new App instance.
func New(config *configs.Config) (*App, error) {
	appLogger, err := loggers.New(config.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	appLogger = appLogger.With().
		Str(loggers.FieldApp, "kv-transactions").
		Logger()

	app := &App{config: config, appLogger: appLogger}

	fileStorage, err := filestorages.NewFileStorage(config.FileStorage.RootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	// Initialize collections
	provider := newCollectionProvider(config.Store, fileStorage)

	// Initialize aggregation driver
	accumulation, err := accumulationSettings(config.Aggregation)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize accumulation: %w", err)
	}
	lookup := stores.NewTransactionLookup(config.Aggregation.LookupMaxRequestBytes, config.Aggregation.LookupConcurrency)
	writer := stores.NewTransactionWriter(config.Aggregation.WriteBatchSize)
	merger := aggregators.NewTransactionMerger(aggregators.NewEventFingerprinter(), aggregators.NewTimeWindowReducer())
	driver := aggregators.NewAggregationDriver(provider, lookup, writer, merger, time.Now)

	// Initialize ingestion service
	ingestionService := ingestors.NewIngestionService(driver, ingestors.Defaults{
		TransactionIDField: config.Aggregation.TransactionIDField,
		Accumulation:       accumulation,
		MaxBatchBytes:      config.Ingestion.MaxBatchBytes,
	})

	// Initialize export service
	sink := app.newSink(config.Export, fileStorage)
	exportService := exporters.NewExportService(provider, sink, exporters.Defaults{
		Host:            config.Export.Host,
		MaxRequestBytes: config.Aggregation.LookupMaxRequestBytes,
	}, time.Now)

	// Initialize stream source
	if config.Stream.Enabled {
		app.initStream(config.Stream, config.Aggregation, accumulation, driver)
	}

	// Initialize http router
	httpLogger := loggers.WithComponent(appLogger, "http")
	router := internalhttp.NewRouter(ingestionService, exportService, httpLogger)

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", config.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderTimeout) * time.Second,
		ReadTimeout:       time.Duration(config.Server.ReadTimeout) * time.Second,
		WriteTimeout:      time.Duration(config.Server.WriteTimeout) * time.Second,
		IdleTimeout:       time.Duration(config.Server.IdleTimeout) * time.Second,
	}

	return app, nil
}

func newCollectionProvider(cfg configs.StoreConfig, fileStorage filestorages.FileStorage) collections.Provider {
	if cfg.Backend == configs.StoreBackendREST {
		client := httpclients.NewHTTPClient(time.Duration(cfg.REST.Timeout) * time.Second)
		return collections.NewRESTProvider(client, collections.RESTOptions{
			BaseURL:       cfg.REST.BaseURL,
			AuthToken:     cfg.REST.AuthToken,
			RetryAttempts: cfg.REST.RetryAttempts,
			RetryBackoff:  time.Duration(cfg.REST.RetryBackoffMs) * time.Millisecond,
		})
	}
	return collections.NewFileProvider(fileStorage, cfg.Collections)
}

func accumulationSettings(cfg configs.AggregationConfig) (models.AccumulationSettings, error) {
	if cfg.Accumulate == string(models.AccumulateFields) {
		return models.ParseAccumulation(strings.Join(cfg.AccumulateFields, ","), cfg.Dedupe)
	}
	return models.ParseAccumulation(cfg.Accumulate, cfg.Dedupe)
}

func (app *App) newSink(cfg configs.ExportConfig, fileStorage filestorages.FileStorage) exporters.Sink {
	if cfg.Sink == configs.ExportSinkKafka {
		writer := exporters.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		app.closers = append(app.closers, writer)
		return exporters.NewKafkaSink(writer)
	}
	return exporters.NewFileSink(fileStorage, time.Now)
}

func (app *App) initStream(cfg configs.StreamConfig, aggregation configs.AggregationConfig, accumulation models.AccumulationSettings, driver aggregators.AggregationDriver) {
	idField := cfg.TransactionIDField
	if idField == "" {
		idField = aggregation.TransactionIDField
	}

	queue := streams.NewPartitionedQueue[events.TransactionEvent](0, 0)
	consumerLogger := loggers.WithComponent(app.appLogger, "consumer")
	app.eventConsumer = streams.NewEventConsumer(queue, driver, streams.ConsumerOptions{
		Run: aggregators.RunOptions{
			Collection:         cfg.Collection,
			TransactionIDField: idField,
			Accumulation:       accumulation,
			DryRun:             cfg.TestMode,
		},
		BatchSize:     cfg.BatchSize,
		FlushInterval: time.Duration(cfg.FlushIntervalMs) * time.Millisecond,
	}, consumerLogger)

	reader := streams.NewKafkaReader(streams.KafkaReaderConfig{
		Brokers: cfg.Kafka.Brokers,
		Topic:   cfg.Kafka.Topic,
		GroupID: cfg.Kafka.GroupID,
	})
	app.closers = append(app.closers, reader)
	app.kafkaSource = streams.NewKafkaSource(reader, streams.NewEventProducer(queue), idField, app.appLogger)
}

// Start starts the HTTP server in a blocking manner.
func (app *App) Start() error {
	app.appLogger.Info().
		Msgf("Starting kv-transactions service on port %d (log_level=%s, store_backend=%s, export_sink=%s, stream_enabled=%t)",
			app.config.Server.Port,
			app.config.Log.Level,
			app.config.Store.Backend,
			app.config.Export.Sink,
			app.config.Stream.Enabled)

	// start background consumers
	app.backgroundCtx, app.backgroundCancel = context.WithCancel(context.Background())
	if app.eventConsumer != nil {
		app.eventConsumer.Start(app.backgroundCtx)
		app.sourceDone = make(chan struct{})
		go func() {
			defer close(app.sourceDone)
			if err := app.kafkaSource.Run(app.backgroundCtx); err != nil && !errors.Is(err, context.Canceled) {
				app.appLogger.Error().Err(err).Msg("kafka source stopped")
			}
		}()
	}

	return app.server.ListenAndServe()
}

// Shutdown gracefully shuts down the application.
func (app *App) Shutdown(ctx context.Context) error {
	// 1) Shutdown server
	app.appLogger.Info().Msg("Shutting down server...")
	if err := app.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	app.appLogger.Info().Msg("Server stopped")

	// 2) Cancel background consumers
	if app.backgroundCancel != nil {
		app.backgroundCancel()
		app.appLogger.Info().Msg("Background consumers cancelled")
	}

	// 3) Wait for the source, then let the workers flush what they buffered
	if app.sourceDone != nil {
		<-app.sourceDone
	}
	if app.eventConsumer != nil {
		app.eventConsumer.Stop()
		app.appLogger.Info().Msg("Background consumers stopped")
	}

	// 4) Release kafka clients
	var errs []error
	for _, c := range app.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("failed to close clients: %w", err)
	}
	return nil
}
