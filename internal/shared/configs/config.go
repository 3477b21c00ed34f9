package configs

// Config holds all configuration for the application.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" validate:"required"`
	Log         LogConfig         `mapstructure:"log" validate:"required"`
	FileStorage FileStorageConfig `mapstructure:"file_storage" validate:"required"`
	Store       StoreConfig       `mapstructure:"store" validate:"required"`
	Aggregation AggregationConfig `mapstructure:"aggregation" validate:"required"`
	Ingestion   IngestionConfig   `mapstructure:"ingestion"`
	Export      ExportConfig      `mapstructure:"export" validate:"required"`
	Stream      StreamConfig      `mapstructure:"stream"`
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Port              int `mapstructure:"port" validate:"required,min=1,max=65535"`
	ReadHeaderTimeout int `mapstructure:"read_header_timeout" validate:"required,min=1"` // seconds
	ReadTimeout       int `mapstructure:"read_timeout" validate:"required,min=1"`        // seconds (headers+body)
	WriteTimeout      int `mapstructure:"write_timeout" validate:"required,min=1"`       // seconds (response)
	IdleTimeout       int `mapstructure:"idle_timeout" validate:"required,min=1"`        // seconds (keep-alive)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required"`
}

// FileStorageConfig holds file storage configuration.
type FileStorageConfig struct {
	RootDir string `mapstructure:"root_dir" validate:"required"`
}

const (
	StoreBackendFile = "file"
	StoreBackendREST = "rest"
)

// StoreConfig selects the key-value collection backend.
type StoreConfig struct {
	Backend     string          `mapstructure:"backend" validate:"required,oneof=file rest"`
	Collections []string        `mapstructure:"collections" validate:"required_if=Backend file,dive,required"`
	REST        RESTStoreConfig `mapstructure:"rest"`
}

// RESTStoreConfig holds the settings of the REST key-value store client.
type RESTStoreConfig struct {
	BaseURL        string `mapstructure:"base_url" validate:"omitempty,url"`
	AuthToken      string `mapstructure:"auth_token"`
	Timeout        int    `mapstructure:"timeout" validate:"min=0"` // seconds
	RetryAttempts  int    `mapstructure:"retry_attempts" validate:"min=0"`
	RetryBackoffMs int    `mapstructure:"retry_backoff_ms" validate:"min=0"`
}

// AggregationConfig holds the defaults of a transaction aggregation run.
type AggregationConfig struct {
	TransactionIDField    string   `mapstructure:"transaction_id_field" validate:"required"`
	Accumulate            string   `mapstructure:"accumulate" validate:"required,oneof=off all fields"`
	AccumulateFields      []string `mapstructure:"accumulate_fields" validate:"required_if=Accumulate fields"`
	Dedupe                bool     `mapstructure:"dedupe"`
	LookupMaxRequestBytes int      `mapstructure:"lookup_max_request_bytes" validate:"required,min=1"`
	LookupConcurrency     int      `mapstructure:"lookup_concurrency" validate:"required,min=1"`
	WriteBatchSize        int      `mapstructure:"write_batch_size" validate:"required,min=1"`
}

// IngestionConfig holds limits of the HTTP event ingestion.
type IngestionConfig struct {
	MaxBatchBytes int `mapstructure:"max_batch_bytes" validate:"min=0"`
}

const (
	ExportSinkFile  = "file"
	ExportSinkKafka = "kafka"
)

// ExportConfig holds the configuration of the transaction export sink.
type ExportConfig struct {
	Sink  string      `mapstructure:"sink" validate:"required,oneof=file kafka"`
	Host  string      `mapstructure:"host"`
	Kafka KafkaConfig `mapstructure:"kafka"`
}

// KafkaConfig holds kafka connection settings.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
	GroupID string   `mapstructure:"group_id"`
}

// StreamConfig holds the configuration of the kafka event source.
type StreamConfig struct {
	Enabled            bool        `mapstructure:"enabled"`
	Kafka              KafkaConfig `mapstructure:"kafka"`
	Collection         string      `mapstructure:"collection" validate:"required_if=Enabled true"`
	TransactionIDField string      `mapstructure:"transaction_id_field"`
	TestMode           bool        `mapstructure:"testmode"`
	BatchSize          int         `mapstructure:"batch_size" validate:"min=0"`
	FlushIntervalMs    int         `mapstructure:"flush_interval_ms" validate:"min=0"`
}
