// Package logging provides structured logging for the proof pipeline.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/certen/pdf-zk-proof/pkg/apperrors"
)

// Logger wraps slog.Logger with pipeline-specific conveniences.
type Logger struct {
	*slog.Logger
	config *Config
}

// Config controls logger construction.
type Config struct {
	Level      slog.Level
	Format     string // "json" or "text"
	Output     string // "stdout", "stderr", or a file path
	AddSource  bool
	TimeFormat string
}

// Field is a single structured logging field.
type Field struct {
	Key   string
	Value any
}

// DefaultConfig returns the default logging configuration: info level,
// text format, stdout.
func DefaultConfig() *Config {
	return &Config{
		Level:      slog.LevelInfo,
		Format:     "text",
		Output:     "stdout",
		TimeFormat: time.RFC3339,
	}
}

// New creates a Logger from the given configuration. A nil config uses
// DefaultConfig.
func New(config *Config) (*Logger, error) {
	if config == nil {
		config = DefaultConfig()
	}

	var output io.Writer
	switch config.Output {
	case "stdout", "":
		output = os.Stdout
	case "stderr":
		output = os.Stderr
	default:
		file, err := os.OpenFile(config.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		output = file
	}

	handlerOpts := &slog.HandlerOptions{
		Level:     config.Level,
		AddSource: config.AddSource,
	}

	var handler slog.Handler
	if config.Format == "json" {
		handler = slog.NewJSONHandler(output, handlerOpts)
	} else {
		handler = slog.NewTextHandler(output, handlerOpts)
	}

	return &Logger{Logger: slog.New(handler), config: config}, nil
}

// WithComponent returns a logger tagged with the given pipeline component
// name (e.g. "byterange", "cms", "merkle").
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithFields(Field{Key: "component", Value: component})
}

// WithStage returns a logger tagged with the current pipeline stage.
func (l *Logger) WithStage(stage string) *Logger {
	return l.WithFields(Field{Key: "stage", Value: stage})
}

// WithFields returns a logger with additional structured fields attached.
func (l *Logger) WithFields(fields ...Field) *Logger {
	if len(fields) == 0 {
		return l
	}
	args := make([]any, 0, len(fields)*2)
	for _, f := range fields {
		args = append(args, f.Key, f.Value)
	}
	return &Logger{Logger: l.Logger.With(args...), config: l.config}
}

// WithError returns a logger with error information attached. If err wraps
// an *apperrors.PipelineError, its code and context are surfaced as fields.
func (l *Logger) WithError(err error) *Logger {
	if err == nil {
		return l
	}
	args := []any{"error", err.Error()}
	if pe, ok := apperrors.As(err); ok {
		args = append(args, "error_code", string(pe.Code))
		if pe.Details != "" {
			args = append(args, "error_details", pe.Details)
		}
		for k, v := range pe.Context {
			args = append(args, fmt.Sprintf("error_context_%s", k), v)
		}
	}
	return &Logger{Logger: l.Logger.With(args...), config: l.config}
}

// Debug logs a debug-level message with structured fields.
func (l *Logger) Debug(msg string, fields ...Field) { l.log(slog.LevelDebug, msg, fields...) }

// Info logs an info-level message with structured fields.
func (l *Logger) Info(msg string, fields ...Field) { l.log(slog.LevelInfo, msg, fields...) }

// Warn logs a warn-level message with structured fields.
func (l *Logger) Warn(msg string, fields ...Field) { l.log(slog.LevelWarn, msg, fields...) }

// Error logs an error-level message with structured fields.
func (l *Logger) Error(msg string, fields ...Field) { l.log(slog.LevelError, msg, fields...) }

func (l *Logger) log(level slog.Level, msg string, fields ...Field) {
	if !l.Logger.Enabled(context.Background(), level) {
		return
	}
	attrs := make([]slog.Attr, len(fields))
	for i, f := range fields {
		attrs[i] = slog.Any(f.Key, f.Value)
	}
	if l.config.AddSource {
		_, file, line, ok := runtime.Caller(2)
		if ok {
			attrs = append(attrs, slog.Group("source", slog.String("file", file), slog.Int("line", line)))
		}
	}
	l.Logger.LogAttrs(context.Background(), level, msg, attrs...)
}

// LogStage logs completion of a pipeline stage, at error level on failure.
func (l *Logger) LogStage(stage string, success bool, duration time.Duration, fields ...Field) {
	allFields := append([]Field{
		{Key: "stage", Value: stage},
		{Key: "success", Value: success},
		{Key: "duration_ms", Value: duration.Milliseconds()},
	}, fields...)

	level := slog.LevelInfo
	if !success {
		level = slog.LevelError
	}
	l.log(level, "pipeline stage complete", allFields...)
}

// ParseLevel parses a case-insensitive log level name.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %s", level)
	}
}
