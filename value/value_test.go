package value

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValue_ZeroIsNull(t *testing.T) {
	var v Value
	assert.True(t, v.IsNull())
	assert.Equal(t, KindNull, v.Kind())
}

func TestValue_Kinds(t *testing.T) {
	tests := []struct {
		v    Value
		kind Kind
		repr string
	}{
		{v: Null(), kind: KindNull, repr: "null"},
		{v: Number(42), kind: KindNumber, repr: "number(42)"},
		{v: String("addr"), kind: KindString, repr: `string("addr")`},
		{v: Buffer([]byte("abc")), kind: KindBuffer, repr: "buffer[3]"},
		{v: Func(FunctionFunc(nil)), kind: KindFunction, repr: "function"},
	}

	for _, tt := range tests {
		t.Run(tt.repr, func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.v.Kind())
			assert.True(t, tt.v.Is(tt.kind))
			assert.Equal(t, tt.repr, tt.v.String())
		})
	}
}

func TestFunc_NilIsNull(t *testing.T) {
	assert.True(t, Func(nil).IsNull())
}

func TestBuffer_NilIsEmpty(t *testing.T) {
	v := Buffer(nil)
	assert.Equal(t, KindBuffer, v.Kind())
	assert.Equal(t, "buffer[0]", v.String())
}

func TestValues_List(t *testing.T) {
	args := Values{Number(3), String("x")}

	assert.Equal(t, 2, args.Len())
	assert.Equal(t, Number(3), args.At(0))
	assert.True(t, args.At(2).IsNull())
	assert.True(t, args.At(-1).IsNull())
}
