package bridge

import (
	"github.com/archernet/callbridge/value"
)

// Args holds the arguments of one call after validation and conversion.
//
// Positions covered by the contract were materialized before dispatch, so
// their accessors cannot fail. Positions past the contract are converted on
// access; asking for the wrong variant there panics, as the converters do.
type Args struct {
	list   value.List
	scope  *value.Scope
	native []any
}

// Len returns the number of arguments the host supplied.
func (a *Args) Len() int {
	return a.list.Len()
}

// Present reports whether position i was supplied and is not null.
func (a *Args) Present(i int) bool {
	return i < a.list.Len() && !a.list.At(i).IsNull()
}

// Value returns the raw host value at position i.
func (a *Args) Value(i int) value.Value {
	return a.list.At(i)
}

// Float returns position i as float64.
func (a *Args) Float(i int) float64 {
	if f, ok := a.materialized(i).(float64); ok {
		return f
	}
	return value.ToNumber(a.list.At(i))
}

// Int returns position i as int64 (truncating, saturating).
func (a *Args) Int(i int) int64 {
	return value.ToInteger(a.list.At(i))
}

// Int32 returns position i as int32 (truncating, wrapping).
func (a *Args) Int32(i int) int32 {
	return value.ToInt32(a.list.At(i))
}

// Bytes returns position i as an owned UTF-8 byte slice.
func (a *Args) Bytes(i int) []byte {
	if b, ok := a.materialized(i).([]byte); ok {
		return b
	}
	b, err := value.ToUTF8String(a.list.At(i))
	if err != nil {
		panic(err)
	}
	return b
}

// String returns position i as a Go string.
func (a *Args) String(i int) string {
	return string(a.Bytes(i))
}

// Buffer returns the borrowed view for position i. The view is released
// when the call returns.
func (a *Args) Buffer(i int) *value.View {
	if v, ok := a.materialized(i).(*value.View); ok {
		return v
	}
	view, err := a.scope.Borrow(a.list.At(i))
	if err != nil {
		panic(err)
	}
	return view
}

// Callback returns the host function value at position i, ready to be
// passed to CallContext.InvokeCallback.
func (a *Args) Callback(i int) value.Value {
	v := a.list.At(i)
	_ = value.ToFunction(v) // asserts the variant
	return v
}

func (a *Args) materialized(i int) any {
	if i < 0 || i >= len(a.native) {
		return nil
	}
	return a.native[i]
}
