// =============================================================================
// ERP Sales Reconciler - Logger Module
// =============================================================================
//
// Structured logging for the reconciliation pipeline, built on zerolog.
// The CLI configures one root logger; each pipeline run derives a child
// logger carrying the run ID and export-set key so concurrent runs stay
// distinguishable in the output.
//
// =============================================================================

package logger

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// New creates a console logger writing to stdout at the given level.
// Unknown level strings fall back to info.
func New(level string) zerolog.Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: time.RFC3339,
	}
	return zerolog.New(output).Level(parseLevel(level)).With().Timestamp().Logger()
}

// NewWithWriter creates a logger writing to a custom writer. Used by tests
// and by the error-log file sink.
func NewWithWriter(w io.Writer, level string) zerolog.Logger {
	return zerolog.New(w).Level(parseLevel(level)).With().Timestamp().Logger()
}

// Nop returns a disabled logger for callers that do not want output.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}

// ForRun derives a child logger tagged with the run ID and export-set key.
func ForRun(log zerolog.Logger, runID, setKey string) zerolog.Logger {
	return log.With().Str("run_id", runID).Str("set", setKey).Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}
