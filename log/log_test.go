package log

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNew_Defaults(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf))

	assert.True(t, logger.Enabled(context.TODO(), slog.LevelInfo))
	assert.False(t, logger.Enabled(context.TODO(), slog.LevelDebug))

	logger.Info("exposed function invoked", "function", "add")
	assert.Contains(t, buf.String(), "msg=\"exposed function invoked\"")
	assert.Contains(t, buf.String(), "function=add")
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithFormat(FormatJSON), WithLevel(slog.LevelDebug))

	logger.Debug("callback invoked", "args", 3)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "callback invoked", record["msg"])
	assert.Equal(t, "DEBUG", record["level"])
	assert.Equal(t, float64(3), record["args"])
}

func TestNew_ZapBackendWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := New(WithWriter(&buf), WithBackend(BackendZap))

	logger.Info("log", "fd", int64(1000), "text", "hello")

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "log", record["msg"])
	assert.Equal(t, "info", record["level"])
	assert.Equal(t, float64(1000), record["fd"])
	assert.Equal(t, "hello", record["text"])
}

func TestZapHandler_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := slog.New(NewZapHandler(zap.New(core)))

	logger.Debug("record",
		slog.String("s", "value"),
		slog.Int64("i", -4),
		slog.Uint64("u", 7),
		slog.Bool("b", true),
		slog.Float64("f", 1.5),
		slog.Duration("d", time.Second),
		slog.Any("err", errors.New("test error")),
	)

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, zapcore.DebugLevel, entry.Level)

	fields := entry.ContextMap()
	assert.Equal(t, "value", fields["s"])
	assert.Equal(t, int64(-4), fields["i"])
	assert.Equal(t, uint64(7), fields["u"])
	assert.Equal(t, true, fields["b"])
	assert.Equal(t, 1.5, fields["f"])
	assert.Equal(t, time.Second, fields["d"])
	assert.Equal(t, "test error", fields["err"])
}

func TestZapHandler_GroupsAndAttrs(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	logger := slog.New(NewZapHandler(zap.New(core))).
		With("module", "callbridge").
		WithGroup("call")

	logger.Info("invoke", "function", "log", slog.Group("args", slog.Int("count", 5)))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "callbridge", fields["module"])
	assert.Equal(t, "log", fields["call.function"])
	assert.Equal(t, int64(5), fields["call.args.count"])
}

func TestZapHandler_LevelFiltering(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	logger := slog.New(NewZapHandler(zap.New(core)))

	assert.False(t, logger.Enabled(context.TODO(), slog.LevelInfo))
	logger.Info("dropped")
	logger.Error("kept")

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "kept", logs.All()[0].Message)
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: " warn ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestContext(t *testing.T) {
	assert.Equal(t, slog.Default(), FromContext(context.Background()))

	logger := Discard()
	ctx := WithContext(context.Background(), logger)
	assert.Same(t, logger, FromContext(ctx))
}

func TestLookup(t *testing.T) {
	_, ok := Lookup(context.Background())
	assert.False(t, ok)

	logger := Discard()
	got, ok := Lookup(WithContext(context.Background(), logger))
	assert.True(t, ok)
	assert.Same(t, logger, got)
}
