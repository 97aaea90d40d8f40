// Package telemetry wraps zerolog the way the search engine needs it: a
// small leveled logger that can be handed around as a plain value. The
// engine uses it for load-time notices; the backtracking search itself does
// not log.
package telemetry

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

// Logger is a thin facade over zerolog.Logger scoped to this module's
// needs: Debug- and Warn-level notices for load-time anomalies that degrade
// to a documented default instead of failing.
type Logger struct {
	base zerolog.Logger
}

// New builds a Logger writing to w at the given level ("debug", "info",
// "warn", "error"; unrecognized values fall back to "info").
func New(w io.Writer, level string) Logger {
	if w == nil {
		w = os.Stderr
	}
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	return Logger{base: zerolog.New(w).Level(parsed).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything; useful for tests and for
// engines constructed without an explicit logger.
func Nop() Logger {
	return Logger{base: zerolog.Nop()}
}

func (l Logger) Debug(msg string, fields map[string]any) {
	event := l.base.Debug()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func (l Logger) Info(msg string, fields map[string]any) {
	event := l.base.Info()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}

func (l Logger) Warn(msg string, fields map[string]any) {
	event := l.base.Warn()
	for k, v := range fields {
		event = event.Interface(k, v)
	}
	event.Msg(msg)
}
