// Package logging configures the process-wide zerolog logger
package logging

import (
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var mu sync.Mutex

// ParseLevel maps a level name to a zerolog level, info when unknown
func ParseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Init sets the global logger. Logs go to stderr so that stdout stays
// free for command output; pretty selects a human readable console format.
// Every extra writer receives the same lines in plain console format.
func Init(level string, pretty bool, extra ...io.Writer) zerolog.Logger {
	return Setup(os.Stderr, level, pretty, extra...)
}

// Setup is Init with an explicit primary writer
func Setup(w io.Writer, level string, pretty bool, extra ...io.Writer) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()

	zerolog.SetGlobalLevel(ParseLevel(level))

	out := w
	if pretty {
		out = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	if len(extra) > 0 {
		writers := []io.Writer{out}
		for _, e := range extra {
			writers = append(writers, zerolog.ConsoleWriter{Out: e, NoColor: true, TimeFormat: time.TimeOnly})
		}
		out = zerolog.MultiLevelWriter(writers...)
	}

	logger := zerolog.New(out).With().Timestamp().Logger()
	log.Logger = logger
	return logger
}

// WithCorrelationID returns the global logger tagged with id, a new one
// when id is empty
func WithCorrelationID(id string) zerolog.Logger {
	if id == "" {
		id = NewCorrelationID()
	}
	return log.With().Str("correlation_id", id).Logger()
}

// NewCorrelationID generates a new correlation id
func NewCorrelationID() string {
	return uuid.New().String()
}
