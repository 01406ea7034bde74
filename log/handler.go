// Package log builds the structured (slog) loggers used across the bridge.
//
// Records go either to a stdlib slog handler (text or JSON) or through a
// zap core, selected by configuration.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Format selects the encoding of slog-backed output.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Backend selects the logging implementation.
type Backend string

const (
	BackendSlog Backend = "slog"
	BackendZap  Backend = "zap"
)

// Option configures a logger built by New.
type Option func(*handlerConfig)

type handlerConfig struct {
	writer    io.Writer
	zap       *zap.Logger
	format    Format
	backend   Backend
	level     slog.Level
	addSource bool
}

// defaultHandlerConfig returns the default configuration.
func defaultHandlerConfig() handlerConfig {
	return handlerConfig{
		writer:  os.Stderr,
		format:  FormatText,
		backend: BackendSlog,
		level:   slog.LevelInfo,
	}
}

// WithLevel sets the minimum log level to report.
func WithLevel(level slog.Level) Option {
	return func(c *handlerConfig) {
		c.level = level
	}
}

// WithSource enables reporting of source location (file/line).
func WithSource(enabled bool) Option {
	return func(c *handlerConfig) {
		c.addSource = enabled
	}
}

// WithFormat sets the output encoding for the slog backend.
func WithFormat(format Format) Option {
	return func(c *handlerConfig) {
		c.format = format
	}
}

// WithWriter sets the destination of log output.
func WithWriter(w io.Writer) Option {
	return func(c *handlerConfig) {
		c.writer = w
	}
}

// WithBackend selects slog or zap.
func WithBackend(backend Backend) Option {
	return func(c *handlerConfig) {
		c.backend = backend
	}
}

// WithZapLogger routes records through an existing zap logger. It implies
// the zap backend.
func WithZapLogger(z *zap.Logger) Option {
	return func(c *handlerConfig) {
		c.zap = z
		c.backend = BackendZap
	}
}

// New builds a slog.Logger from the given options.
func New(opts ...Option) *slog.Logger {
	cfg := defaultHandlerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return slog.New(newHandler(cfg))
}

func newHandler(cfg handlerConfig) slog.Handler {
	if cfg.backend == BackendZap {
		z := cfg.zap
		if z == nil {
			encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
			core := zapcore.NewCore(encoder, zapcore.AddSync(cfg.writer), toZapLevel(cfg.level))
			var zopts []zap.Option
			if cfg.addSource {
				zopts = append(zopts, zap.AddCaller())
			}
			z = zap.New(core, zopts...)
		}
		return NewZapHandler(z)
	}

	handlerOpts := &slog.HandlerOptions{Level: cfg.level, AddSource: cfg.addSource}
	if cfg.format == FormatJSON {
		return slog.NewJSONHandler(cfg.writer, handlerOpts)
	}
	return slog.NewTextHandler(cfg.writer, handlerOpts)
}

// ParseLevel parses "debug", "info", "warn" or "error" (case-insensitive).
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// Discard returns a logger that drops every record.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
