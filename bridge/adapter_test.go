package bridge

import (
	"context"
	"errors"
	"testing"

	"github.com/archernet/callbridge/domain/entities"
	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingList records which positions were read.
type countingList struct {
	values value.Values
	reads  []int
}

func (l *countingList) Len() int { return len(l.values) }

func (l *countingList) At(i int) value.Value {
	l.reads = append(l.reads, i)
	return l.values.At(i)
}

func noop(CallContext, *Args) (value.Value, error) { return value.Null(), nil }

func TestValidate_ArityBeforeAnyRead(t *testing.T) {
	list := &countingList{values: value.Values{value.String("x")}}
	err := Validate(AddContract, list)

	var arity *bridgeerrors.ArityError
	require.True(t, errors.As(err, &arity))
	assert.Equal(t, 2, arity.Min)
	assert.Equal(t, 1, arity.Got)
	assert.Contains(t, err.Error(), "need 2 args")
	assert.Empty(t, list.reads, "arity failure must not inspect arguments")
}

func TestValidate_ShortCircuits(t *testing.T) {
	contract := entities.NewContract("f", entities.KindNumber, entities.KindString, entities.KindBuffer)
	list := &countingList{values: value.Values{value.Number(1), value.Number(2), value.Number(3)}}

	err := Validate(contract, list)

	var mismatch *bridgeerrors.TypeMismatchError
	require.True(t, errors.As(err, &mismatch))
	assert.Equal(t, 1, mismatch.Position)
	assert.Equal(t, entities.KindString, mismatch.Expected)
	assert.Equal(t, entities.KindNumber, mismatch.Got)
	assert.Equal(t, []int{0, 1}, list.reads, "positions after the first mismatch must not be read")
}

func TestValidate(t *testing.T) {
	optional := entities.NewContract("opt", entities.KindString, entities.KindFunction).Optional(1)

	tests := []struct {
		name     string
		contract entities.Contract
		args     value.Values
		wantPos  int // -1: no error
	}{
		{name: "exact", contract: AddContract, args: value.Values{value.Number(1), value.Number(2)}, wantPos: -1},
		{name: "extra args unchecked", contract: AddContract, args: value.Values{value.Number(1), value.Number(2), value.String("x")}, wantPos: -1},
		{name: "first position", contract: AddContract, args: value.Values{value.String("x"), value.Number(4)}, wantPos: 0},
		{name: "null at required position", contract: AddContract, args: value.Values{value.Number(1), value.Null()}, wantPos: 1},
		{name: "optional omitted", contract: optional, args: value.Values{value.String("a")}, wantPos: -1},
		{name: "optional null", contract: optional, args: value.Values{value.String("a"), value.Null()}, wantPos: -1},
		{name: "optional wrong kind", contract: optional, args: value.Values{value.String("a"), value.Number(1)}, wantPos: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.contract, tt.args)
			if tt.wantPos < 0 {
				assert.NoError(t, err)
				return
			}
			var mismatch *bridgeerrors.TypeMismatchError
			require.True(t, errors.As(err, &mismatch))
			assert.Equal(t, tt.wantPos, mismatch.Position)
			assert.Equal(t, tt.contract.Name, mismatch.Function)
		})
	}
}

func TestAdapt_NativeNotCalledOnFailure(t *testing.T) {
	called := false
	reg, err := NewRegistry(WithFunction(AddContract, func(CallContext, *Args) (value.Value, error) {
		called = true
		return value.Null(), nil
	}))
	require.NoError(t, err)

	_, err = reg.Call(context.Background(), "add", value.Number(3))
	require.Error(t, err)
	_, err = reg.Call(context.Background(), "add", value.String("x"), value.Number(4))
	require.Error(t, err)
	assert.False(t, called)
}

func TestAdapt_ConversionErrorIsPositioned(t *testing.T) {
	contract := entities.NewContract("greet", entities.KindNumber, entities.KindString)
	reg, err := NewRegistry(WithFunction(contract, noop))
	require.NoError(t, err)

	_, err = reg.Call(context.Background(), "greet", value.Number(1), value.String("bad\xff"))

	var conv *bridgeerrors.ConversionError
	require.True(t, errors.As(err, &conv))
	assert.Equal(t, 1, conv.Position)
	assert.Equal(t, "greet", conv.Function)
	assert.Contains(t, err.Error(), "invalid UTF-8 at byte 3")
}

func TestAdapt_BufferAliasesHostBytes(t *testing.T) {
	host := []byte("payload")
	contract := entities.NewContract("upper", entities.KindBuffer)

	var view *value.View
	reg, err := NewRegistry(WithFunction(contract, func(_ CallContext, args *Args) (value.Value, error) {
		view = args.Buffer(0)
		b := view.Bytes()
		for i := range b {
			b[i] -= 'a' - 'A'
		}
		return value.Number(float64(view.Len())), nil
	}))
	require.NoError(t, err)

	result, err := reg.Call(context.Background(), "upper", value.Buffer(host))
	require.NoError(t, err)
	assert.Equal(t, value.Number(7), result)
	assert.Equal(t, "PAYLOAD", string(host), "writes through the view are visible to the host")

	require.NotNil(t, view)
	assert.False(t, view.Valid(), "view is released when the call returns")
	assert.Panics(t, func() { view.Bytes() })
}

func TestAdapt_UncheckedBufferReleasedWithCall(t *testing.T) {
	var view *value.View
	reg, err := NewRegistry(WithFunction(entities.NewContract("tail"), func(_ CallContext, args *Args) (value.Value, error) {
		view = args.Buffer(0)
		return value.Null(), nil
	}))
	require.NoError(t, err)

	_, err = reg.Call(context.Background(), "tail", value.Buffer([]byte("x")))
	require.NoError(t, err)
	require.NotNil(t, view)
	assert.False(t, view.Valid())
}

func TestArgs_Accessors(t *testing.T) {
	contract := entities.NewContract("all",
		entities.KindNumber, entities.KindString, entities.KindBuffer, entities.KindFunction,
	).Optional(3)
	fn := value.Func(value.FunctionFunc(func(context.Context, value.Value, []value.Value) (value.Value, error) {
		return value.Null(), nil
	}))

	tests := []struct {
		name  string
		args  value.Values
		check func(t *testing.T, args *Args)
	}{
		{
			name: "all present",
			args: value.Values{value.Number(-7.9), value.String("héllo"), value.Buffer([]byte{1, 2}), fn},
			check: func(t *testing.T, args *Args) {
				assert.Equal(t, 4, args.Len())
				assert.Equal(t, -7.9, args.Float(0))
				assert.Equal(t, int64(-7), args.Int(0))
				assert.Equal(t, int32(-7), args.Int32(0))
				assert.Equal(t, "héllo", args.String(1))
				assert.Equal(t, []byte("héllo"), args.Bytes(1))
				assert.Equal(t, []byte{1, 2}, args.Buffer(2).Bytes())
				assert.True(t, args.Present(3))
				assert.Equal(t, value.KindFunction, args.Callback(3).Kind())
			},
		},
		{
			name: "optional callback omitted",
			args: value.Values{value.Number(1), value.String(""), value.Buffer(nil)},
			check: func(t *testing.T, args *Args) {
				assert.False(t, args.Present(3))
				assert.Equal(t, 0, args.Buffer(2).Len())
				assert.Panics(t, func() { args.Callback(3) })
			},
		},
		{
			name: "optional callback null",
			args: value.Values{value.Number(1), value.String(""), value.Buffer(nil), value.Null()},
			check: func(t *testing.T, args *Args) {
				assert.False(t, args.Present(3))
				assert.True(t, args.Value(3).IsNull())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, err := NewRegistry(WithFunction(contract, func(_ CallContext, args *Args) (value.Value, error) {
				tt.check(t, args)
				return value.Null(), nil
			}))
			require.NoError(t, err)

			_, err = reg.Call(context.Background(), "all", tt.args...)
			require.NoError(t, err)
		})
	}
}

func TestCallContext_Values(t *testing.T) {
	cc := newCallContext(context.Background(), AddContract, discardLogger())
	defer cc.Scope().Close()

	_, ok := cc.GetValue("k")
	assert.False(t, ok)

	cc.SetValue("k", 42)
	v, ok := cc.GetValue("k")
	require.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, AddContract, cc.Contract())
}
