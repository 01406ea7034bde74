package value

import (
	"context"
	"fmt"
	"strconv"

	"github.com/archernet/callbridge/domain/entities"
)

// Kind is the variant tag of a Value.
type Kind = entities.Kind

const (
	KindNull     = entities.KindNull
	KindNumber   = entities.KindNumber
	KindString   = entities.KindString
	KindBuffer   = entities.KindBuffer
	KindFunction = entities.KindFunction
)

// Function is a callable owned by the host runtime.
// A non-nil error is the host's way of throwing.
type Function interface {
	Call(ctx context.Context, receiver Value, args []Value) (Value, error)
}

// FunctionFunc adapts an ordinary Go function to the Function interface.
type FunctionFunc func(ctx context.Context, receiver Value, args []Value) (Value, error)

// Call implements Function.
func (f FunctionFunc) Call(ctx context.Context, receiver Value, args []Value) (Value, error) {
	return f(ctx, receiver, args)
}

// Value is a dynamically typed host value. The zero Value is null.
type Value struct {
	fn   Function
	str  string
	buf  []byte
	num  float64
	kind Kind
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Number returns a host number.
func Number(f float64) Value {
	return Value{kind: KindNumber, num: f}
}

// String returns a host string.
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// Buffer wraps host-owned bytes as a buffer value. The bytes are not copied;
// views borrowed from the value alias them.
func Buffer(b []byte) Value {
	if b == nil {
		b = []byte{}
	}
	return Value{kind: KindBuffer, buf: b}
}

// Func wraps a host function. A nil function yields null.
func Func(fn Function) Value {
	if fn == nil {
		return Null()
	}
	return Value{kind: KindFunction, fn: fn}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind {
	return v.kind
}

// IsNull reports whether v is null.
func (v Value) IsNull() bool {
	return v.kind == KindNull
}

// Is reports whether v holds the given variant.
func (v Value) Is(k Kind) bool {
	return v.kind == k
}

// String returns a diagnostic representation of v.
func (v Value) String() string {
	switch v.kind {
	case KindNull:
		return "null"
	case KindNumber:
		return "number(" + strconv.FormatFloat(v.num, 'g', -1, 64) + ")"
	case KindString:
		return "string(" + strconv.Quote(v.str) + ")"
	case KindBuffer:
		return fmt.Sprintf("buffer[%d]", len(v.buf))
	case KindFunction:
		return "function"
	default:
		return v.kind.String()
	}
}
