package bridge

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/archernet/callbridge/domain/entities"
	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	bridgelog "github.com/archernet/callbridge/log"
	"github.com/archernet/callbridge/internal/testutil"
	"github.com/archernet/callbridge/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func demoRegistry(t *testing.T, opts ...RegistryOption) *Registry {
	t.Helper()
	reg, err := NewRegistry(append([]RegistryOption{WithBundle(DemoBundle())}, opts...)...)
	require.NoError(t, err)
	return reg
}

func TestAdd(t *testing.T) {
	reg := demoRegistry(t)

	tests := []struct {
		name     string
		args     value.Values
		want     value.Value
		wantType string
		wantMsg  string
	}{
		{name: "sum", args: value.Values{value.Number(3), value.Number(4)}, want: value.Number(7)},
		{name: "fractions", args: value.Values{value.Number(0.5), value.Number(-2)}, want: value.Number(-1.5)},
		{name: "extra ignored", args: value.Values{value.Number(1), value.Number(1), value.String("x")}, want: value.Number(2)},
		{name: "missing arg", args: value.Values{value.Number(3)}, wantType: "arity", wantMsg: "need 2 args"},
		{name: "no args", args: value.Values{}, wantType: "arity", wantMsg: "need 2 args"},
		{name: "string first", args: value.Values{value.String("x"), value.Number(4)}, wantType: "type_mismatch", wantMsg: "argument 0 must be number"},
		{name: "buffer second", args: value.Values{value.Number(3), value.Buffer([]byte("4"))}, wantType: "type_mismatch", wantMsg: "argument 1 must be number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := reg.Invoke(context.Background(), "add", tt.args)
			if tt.wantType == "" {
				require.NoError(t, err)
				assert.Equal(t, tt.want, result)
				return
			}
			testutil.AssertErrorType(t, err, tt.wantType)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestAdd_MismatchPosition(t *testing.T) {
	_, err := demoRegistry(t).Call(context.Background(), "add", value.String("x"), value.Number(4))

	var mismatch *bridgeerrors.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 0, mismatch.Position)
	assert.Equal(t, entities.KindNumber, mismatch.Expected)
}

func TestLog_InvokesCallbackSynchronously(t *testing.T) {
	var buf bytes.Buffer
	logger := bridgelog.New(bridgelog.WithWriter(&buf), bridgelog.WithFormat(bridgelog.FormatJSON))
	reg := demoRegistry(t, WithLogger(logger))

	var events []string
	var got []value.Value
	cb := value.FunctionFunc(func(_ context.Context, receiver value.Value, args []value.Value) (value.Value, error) {
		events = append(events, "callback")
		assert.True(t, receiver.IsNull())
		got = args
		return value.Null(), nil
	})

	payload := []byte("payload")
	result, err := reg.Call(context.Background(), "log",
		value.Number(1), value.Number(1000), value.String("hello"), value.Buffer(payload), value.Func(cb),
	)
	events = append(events, "returned")

	require.NoError(t, err)
	assert.True(t, result.IsNull())
	assert.Equal(t, []string{"callback", "returned"}, events, "callback runs exactly once, before Invoke returns")

	require.Len(t, got, 3)
	assert.Equal(t, value.Number(DemoCallbackCode), got[0])
	assert.Equal(t, value.String(DemoCallbackAddress), got[1])
	assert.Equal(t, DemoCallbackData, testutil.BufferText(t, got[2]))

	assert.Contains(t, buf.String(), `"fd":1000`)
	assert.Contains(t, buf.String(), `"msg":"hello"`)
	assert.Contains(t, buf.String(), `"buffer_len":7`)
	assert.Contains(t, buf.String(), `"function":"log"`)
	assert.Equal(t, "payload", string(payload), "log does not modify the host buffer")
}

func TestLog_CallbackThrows(t *testing.T) {
	reg := demoRegistry(t)
	cb := value.FunctionFunc(func(context.Context, value.Value, []value.Value) (value.Value, error) {
		return value.Null(), errors.New("TypeError: cb failed")
	})

	_, err := reg.Call(context.Background(), "log",
		value.Number(0), value.Number(3), value.String("m"), value.Buffer(nil), value.Func(cb),
	)

	var cbErr *bridgeerrors.CallbackError
	require.True(t, errors.As(err, &cbErr))
	assert.Equal(t, "log", cbErr.Function)
	assert.Equal(t, "TypeError: cb failed", cbErr.Message)
}

func TestLog_Validation(t *testing.T) {
	reg := demoRegistry(t)
	cb := value.Func(&recorder{})

	tests := []struct {
		name    string
		args    value.Values
		wantPos int
	}{
		{name: "ssl not a number", args: value.Values{value.String("1"), value.Number(1), value.String("m"), value.Buffer(nil), cb}, wantPos: 0},
		{name: "buffer passed as string", args: value.Values{value.Number(1), value.Number(1), value.String("m"), value.String("b"), cb}, wantPos: 3},
		{name: "callback missing", args: value.Values{value.Number(1), value.Number(1), value.String("m"), value.Buffer(nil), value.Null()}, wantPos: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := reg.Invoke(context.Background(), "log", tt.args)

			var mismatch *bridgeerrors.TypeMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, tt.wantPos, mismatch.Position)
		})
	}
}
