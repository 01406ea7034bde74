package value

import (
	"fmt"
	"math"
	"unicode/utf8"

	bridgeerrors "github.com/archernet/callbridge/domain/errors"
)

// mustBe asserts the variant of v. A mismatch here means the caller skipped
// contract validation, so it panics rather than returning an error.
func mustBe(v Value, k Kind) Value {
	if v.kind != k {
		panic(&bridgeerrors.TypeMismatchError{Position: -1, Expected: k, Got: v.kind})
	}
	return v
}

// ToNumber returns the float64 held by a number value.
func ToNumber(v Value) float64 {
	return mustBe(v, KindNumber).num
}

// ToInteger converts a number value to int64.
//
// The fractional part is discarded (truncation toward zero), NaN becomes 0
// and values outside the int64 range, infinities included, saturate at
// math.MaxInt64 or math.MinInt64.
func ToInteger(v Value) int64 {
	f := mustBe(v, KindNumber).num
	switch {
	case math.IsNaN(f):
		return 0
	case f >= 0x1p63:
		return math.MaxInt64
	case f <= -0x1p63:
		return math.MinInt64
	}
	return int64(f)
}

// ToInt32 converts a number value to int32 with ECMAScript ToInt32
// semantics: NaN and infinities become 0, the value is truncated toward
// zero and then wrapped modulo 2^32 into the signed range.
func ToInt32(v Value) int32 {
	f := mustBe(v, KindNumber).num
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	m := math.Mod(math.Trunc(f), 0x1p32)
	if m < 0 {
		m += 0x1p32
	}
	return int32(uint32(m)) //nolint:gosec // wrap-around is the documented policy
}

// ToUTF8String copies the text of a string value into an independently
// owned UTF-8 byte slice. Text that is not valid UTF-8 fails with a
// ConversionError.
func ToUTF8String(v Value) ([]byte, error) {
	s := mustBe(v, KindString).str
	if !utf8.ValidString(s) {
		return nil, &bridgeerrors.ConversionError{
			Position: -1,
			Kind:     KindString,
			Err:      fmt.Errorf("invalid UTF-8 at byte %d", firstInvalidByte(s)),
		}
	}
	out := make([]byte, len(s))
	copy(out, s)
	return out, nil
}

// ToFunction returns the host function held by a function value.
func ToFunction(v Value) Function {
	return mustBe(v, KindFunction).fn
}

func firstInvalidByte(s string) int {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size <= 1 {
			return i
		}
		i += size
	}
	return len(s)
}

// CopyBuffer returns a new host buffer holding a copy of b.
func CopyBuffer(b []byte) Value {
	out := make([]byte, len(b))
	copy(out, b)
	return Buffer(out)
}

// FromNative converts a native Go value into a host value.
//
// Integers and floats become numbers, strings become host strings, byte
// slices and views become freshly copied buffers, and nil becomes null.
// Values pass through unchanged; any other type is a ConversionError.
func FromNative(x any) (Value, error) {
	switch n := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return n, nil
	case float64:
		return Number(n), nil
	case float32:
		return Number(float64(n)), nil
	case int:
		return Number(float64(n)), nil
	case int8:
		return Number(float64(n)), nil
	case int16:
		return Number(float64(n)), nil
	case int32:
		return Number(float64(n)), nil
	case int64:
		return Number(float64(n)), nil
	case uint:
		return Number(float64(n)), nil
	case uint8:
		return Number(float64(n)), nil
	case uint16:
		return Number(float64(n)), nil
	case uint32:
		return Number(float64(n)), nil
	case uint64:
		return Number(float64(n)), nil
	case string:
		return String(n), nil
	case []byte:
		return CopyBuffer(n), nil
	case *View:
		return CopyBuffer(n.Bytes()), nil
	case Function:
		return Func(n), nil
	default:
		return Null(), &bridgeerrors.ConversionError{
			Position: -1,
			Kind:     KindNull,
			Err:      fmt.Errorf("unsupported native type %T", x),
		}
	}
}
