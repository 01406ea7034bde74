package log

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ZapHandler implements slog.Handler on top of a zap logger.
type ZapHandler struct {
	logger *zap.Logger
	fields []zap.Field
	prefix string
}

// NewZapHandler returns a slog.Handler that writes through z.
func NewZapHandler(z *zap.Logger) *ZapHandler {
	return &ZapHandler{logger: z}
}

// Enabled reports whether the zap core accepts records at the given level.
func (h *ZapHandler) Enabled(_ context.Context, level slog.Level) bool {
	return h.logger.Core().Enabled(toZapLevel(level))
}

// Handle converts the record's attributes to zap fields and writes it.
func (h *ZapHandler) Handle(_ context.Context, record slog.Record) error {
	ce := h.logger.Check(toZapLevel(record.Level), record.Message)
	if ce == nil {
		return nil
	}
	if !record.Time.IsZero() {
		ce.Time = record.Time
	}

	fields := slices.Clone(h.fields)
	record.Attrs(func(attr slog.Attr) bool {
		fields = appendZapFields(fields, h.prefix, attr)
		return true
	})
	ce.Write(fields...)
	return nil
}

// WithAttrs returns a handler that adds attrs to every record.
func (h *ZapHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.fields = slices.Clone(h.fields)
	for _, attr := range attrs {
		next.fields = appendZapFields(next.fields, h.prefix, attr)
	}
	return &next
}

// WithGroup returns a handler that qualifies subsequent keys with name.
func (h *ZapHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.prefix = h.prefix + name + "."
	return &next
}

// appendZapFields converts a slog.Attr to zap fields. Groups are flattened
// into dotted keys.
func appendZapFields(fields []zap.Field, prefix string, attr slog.Attr) []zap.Field {
	attr.Value = attr.Value.Resolve()
	if attr.Equal(slog.Attr{}) {
		return fields
	}
	key := prefix + attr.Key

	switch attr.Value.Kind() {
	case slog.KindString:
		return append(fields, zap.String(key, attr.Value.String()))
	case slog.KindInt64:
		return append(fields, zap.Int64(key, attr.Value.Int64()))
	case slog.KindUint64:
		return append(fields, zap.Uint64(key, attr.Value.Uint64()))
	case slog.KindBool:
		return append(fields, zap.Bool(key, attr.Value.Bool()))
	case slog.KindFloat64:
		return append(fields, zap.Float64(key, attr.Value.Float64()))
	case slog.KindTime:
		return append(fields, zap.String(key, attr.Value.Time().Format(time.RFC3339Nano)))
	case slog.KindDuration:
		return append(fields, zap.Duration(key, attr.Value.Duration()))
	case slog.KindGroup:
		groupPrefix := prefix
		if attr.Key != "" {
			groupPrefix = key + "."
		}
		for _, member := range attr.Value.Group() {
			fields = appendZapFields(fields, groupPrefix, member)
		}
		return fields
	case slog.KindAny:
		v := attr.Value.Any()
		if err, isErr := v.(error); isErr {
			return append(fields, zap.NamedError(key, err))
		}
		if data, err := json.Marshal(v); err == nil {
			return append(fields, zap.Any(key, json.RawMessage(data)))
		}
		return append(fields, zap.String(key, fmt.Sprintf("%v", v)))
	default:
		return append(fields, zap.Any(key, attr.Value.Any()))
	}
}

func toZapLevel(level slog.Level) zapcore.Level {
	switch {
	case level < slog.LevelInfo:
		return zapcore.DebugLevel
	case level < slog.LevelWarn:
		return zapcore.InfoLevel
	case level < slog.LevelError:
		return zapcore.WarnLevel
	default:
		return zapcore.ErrorLevel
	}
}
