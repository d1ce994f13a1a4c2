package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that appends to a file, creating its
// directory if needed
func NewFileLogger(path string) (*Logger, func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, nil, err
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		f.Close()
	}

	return New(f), cleanup, nil
}

// NewMultiLogger creates a logger that writes to multiple outputs
func NewMultiLogger(writers ...io.Writer) *Logger {
	return New(io.MultiWriter(writers...))
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(path string, nodes, supertags, fields int) {
	l.Debug("config loaded",
		"path", path,
		"nodes", nodes,
		"supertags", supertags,
		"fields", fields)
}

// PayloadBuilt logs a converted line
func (l *Logger) PayloadBuilt(target, name string, children, supertags int) {
	l.Debug("payload built",
		"target", target,
		"name", name,
		"children", children,
		"supertags", supertags)
}

// UnknownKeys logs keys that resolved to no identifier
func (l *Logger) UnknownKeys(err error) {
	l.Warn("unknown keys",
		"error", err)
}

// Submitted logs a successful submission
func (l *Logger) Submitted(endpoint, name string, duration time.Duration) {
	l.Info("payload submitted",
		"endpoint", endpoint,
		"name", name,
		"duration", duration.Round(time.Millisecond))
}

// SubmitFailed logs a failed submission
func (l *Logger) SubmitFailed(endpoint string, err error) {
	l.Error("submit failed",
		"endpoint", endpoint,
		"error", err)
}

// Queued logs a payload stored in the outbox
func (l *Logger) Queued(id, name string) {
	l.Info("payload queued",
		"id", id,
		"name", name)
}

// FlushCompleted logs the end of an outbox flush
func (l *Logger) FlushCompleted(sent, failed int, duration time.Duration) {
	l.Info("flush completed",
		"sent", sent,
		"failed", failed,
		"duration", duration.Round(time.Millisecond))
}

// OutboxError logs an outbox read or write failure
func (l *Logger) OutboxError(operation string, err error) {
	l.Error("outbox error",
		"operation", operation,
		"error", err)
}
