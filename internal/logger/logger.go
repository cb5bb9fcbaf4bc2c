package logger

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
)

// Logger is the component-scoped logging interface used by the pipeline
type Logger interface {
	Debug(component, message string, fields map[string]interface{})
	Info(component, message string, fields map[string]interface{})
	Warning(component, message string, fields map[string]interface{})
	Error(component string, err error, fields map[string]interface{})
}

// Zerolog implements Logger on top of a zerolog.Logger. The component is
// attached as a field and fields are written in sorted key order.
type Zerolog struct {
	zl zerolog.Logger
}

// NewZerolog writes JSON lines at or above level to w
func NewZerolog(w io.Writer, level zerolog.Level) *Zerolog {
	return &Zerolog{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// NewConsoleLogger writes human-readable logs to stderr so stdout stays
// reserved for the JSON result.
func NewConsoleLogger(level zerolog.Level) *Zerolog {
	return NewZerolog(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}, level)
}

// NewNop returns a logger that discards everything
func NewNop() *Zerolog {
	return &Zerolog{zl: zerolog.Nop()}
}

// ParseLevel maps a level name to a zerolog level, defaulting to info.
// An empty name falls back to MARMA_LOG_LEVEL.
func ParseLevel(name string) zerolog.Level {
	if name == "" {
		name = os.Getenv("MARMA_LOG_LEVEL")
	}
	switch strings.ToLower(name) {
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "disabled", "off":
		return zerolog.Disabled
	default:
		return zerolog.InfoLevel
	}
}

// Debug logs per-stage detail such as landmark positions
func (z *Zerolog) Debug(component, message string, fields map[string]interface{}) {
	emit(z.zl.Debug(), component, fields, message)
}

// Info logs run-level progress
func (z *Zerolog) Info(component, message string, fields map[string]interface{}) {
	emit(z.zl.Info(), component, fields, message)
}

// Warning logs recoverable conditions, e.g. an image with no feet
func (z *Zerolog) Warning(component, message string, fields map[string]interface{}) {
	emit(z.zl.Warn(), component, fields, message)
}

// Error logs err under the "error" field
func (z *Zerolog) Error(component string, err error, fields map[string]interface{}) {
	emit(z.zl.Error().Err(err), component, fields, component+" failed")
}

// emit is a no-op when the event's level is disabled (event is nil)
func emit(event *zerolog.Event, component string, fields map[string]interface{}, message string) {
	if event == nil {
		return
	}
	event.Str("component", component).Fields(fields).Msg(message)
}
