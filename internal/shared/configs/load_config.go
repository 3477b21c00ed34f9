package configs

import (
	"fmt"
	"strings"

	"kv-transactions/internal/shared/validators"

	"github.com/spf13/viper"
)

const envPrefix = "KVTXN"

// LoadConfig reads configuration from file, applies defaults and environment overrides, and validates it.
var LoadConfig = func(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("yaml")
	setDefaults(v)

	// KVTXN_STORE_BACKEND overrides store.backend
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read from file
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %q: %w", configPath, err)
	}

	// Unmarshal into Config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Validate config
	validate := validators.New()
	if err := validate.Struct(&cfg); err != nil {
		var validationErrors []string
		if ve, ok := err.(validators.ValidationErrors); ok {
			for _, e := range ve {
				validationErrors = append(validationErrors, formatValidationError(e))
			}
		}
		return nil, fmt.Errorf("config validation failed: %s", strings.Join(validationErrors, ", "))
	}
	if err := validateCrossFields(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("store.backend", StoreBackendFile)
	v.SetDefault("store.rest.timeout", 30)
	v.SetDefault("store.rest.retry_attempts", 3)
	v.SetDefault("store.rest.retry_backoff_ms", 200)

	v.SetDefault("aggregation.accumulate", "off")
	v.SetDefault("aggregation.dedupe", false)
	v.SetDefault("aggregation.lookup_max_request_bytes", 70000)
	v.SetDefault("aggregation.lookup_concurrency", 4)
	v.SetDefault("aggregation.write_batch_size", 1000)

	v.SetDefault("ingestion.max_batch_bytes", 2*1024*1024)

	v.SetDefault("export.sink", ExportSinkFile)

	v.SetDefault("stream.enabled", false)
	v.SetDefault("stream.testmode", false)
	v.SetDefault("stream.batch_size", 500)
	v.SetDefault("stream.flush_interval_ms", 1000)
}

// validateCrossFields checks the rules that depend on which backend or sink is selected.
func validateCrossFields(cfg *Config) error {
	if cfg.Store.Backend == StoreBackendREST && cfg.Store.REST.BaseURL == "" {
		return fmt.Errorf("store.rest.base_url (required when store.backend=rest)")
	}
	if cfg.Export.Sink == ExportSinkKafka && (len(cfg.Export.Kafka.Brokers) == 0 || cfg.Export.Kafka.Topic == "") {
		return fmt.Errorf("export.kafka.brokers and export.kafka.topic (required when export.sink=kafka)")
	}
	if cfg.Stream.Enabled && (len(cfg.Stream.Kafka.Brokers) == 0 || cfg.Stream.Kafka.Topic == "" || cfg.Stream.Kafka.GroupID == "") {
		return fmt.Errorf("stream.kafka.brokers, stream.kafka.topic and stream.kafka.group_id (required when stream.enabled=true)")
	}
	return nil
}

// formatValidationError formats a single validation error into a readable string.
func formatValidationError(e validators.FieldError) string {
	field := e.Field()
	tag := e.Tag()

	// Build field path (e.g., "server.port")
	if e.StructNamespace() != "" {
		// Extract nested field path (e.g., "Config.Server.Port" -> "server.port")
		parts := strings.Split(e.StructNamespace(), ".")
		if len(parts) >= 2 {
			// Skip "Config" prefix, convert to lowercase with dots
			fieldPath := strings.ToLower(strings.Join(parts[1:], "."))
			field = fieldPath
		}
	}

	var msg string
	switch tag {
	case "required":
		msg = fmt.Sprintf("%s (required)", field)
	case "required_if":
		msg = fmt.Sprintf("%s (required_if=%s)", field, e.Param())
	case "min":
		msg = fmt.Sprintf("%s (min=%s)", field, e.Param())
	case "max":
		msg = fmt.Sprintf("%s (max=%s)", field, e.Param())
	case "oneof":
		msg = fmt.Sprintf("%s (oneof=%s)", field, e.Param())
	default:
		msg = fmt.Sprintf("%s (%s)", field, tag)
	}

	return msg
}
