package loggers

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a wrapper around zerolog.Logger for convenience.
type Logger = zerolog.Logger

// New creates a JSON logger writing to stdout at the given level.
// Returns an error if the log level string cannot be parsed.
func New(level string) (Logger, error) {
	return NewWithWriter(level, os.Stdout)
}

// NewWithWriter is New with a custom destination.
func NewWithWriter(level string, w io.Writer) (Logger, error) {
	zerologLevel, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), err
	}

	zerolog.TimestampFunc = func() time.Time {
		return time.Now().UTC()
	}

	logger := zerolog.New(w).
		Level(zerologLevel).
		With().
		Timestamp().
		Caller().
		Logger()

	return logger, nil
}

// WithComponent returns a child logger tagged with the component name.
func WithComponent(logger Logger, component string) Logger {
	return logger.With().Str(FieldComponent, component).Logger()
}

// Ctx extracts a logger from the context.
// Returns a disabled logger if no logger is found in context.
var Ctx = func(ctx context.Context) *Logger {
	return zerolog.Ctx(ctx)
}
