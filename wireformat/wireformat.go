// Package wireformat defines the CBOR envelopes exchanged between the
// WebAssembly host and guest. Arguments reference guest linear memory where
// they can; the envelopes themselves are passed as a packed pointer/length
// pair. These types define the ABI and must stay stable.
package wireformat

import (
	"fmt"
	"reflect"

	"github.com/archernet/callbridge/domain/entities"
	"github.com/archernet/callbridge/domain/errors"
	"github.com/fxamacker/cbor/v2"
)

// DefaultCallbackExport is the guest export that dispatches callbacks.
const DefaultCallbackExport = "callbridge_callback"

// ValueWire is one host value in transit.
//
//   - Number: Num.
//   - String: Str inline, or Ptr/Len into guest memory when Ptr is non-zero.
//   - Buffer: Ptr/Len into guest memory, or Bytes inline in results the
//     guest returns.
//   - Function: a guest callback, identified by Handle and dispatched
//     through the guest export named by Export.
type ValueWire struct {
	Str    string        `cbor:"s,omitempty"`
	Bytes  []byte        `cbor:"b,omitempty"`
	Export string        `cbor:"e,omitempty"`
	Num    float64       `cbor:"n,omitempty"`
	Ptr    uint32        `cbor:"p,omitempty"`
	Len    uint32        `cbor:"l,omitempty"`
	Handle uint32        `cbor:"h,omitempty"`
	Kind   entities.Kind `cbor:"k"`
}

// CallWire carries the arguments of a guest to host call.
type CallWire struct {
	Args []ValueWire `cbor:"args"`
}

// ResultWire carries the outcome of a call in either direction.
// Exactly one of Value and Error is set; a nil Value without Error is null.
type ResultWire struct {
	Value *ValueWire            `cbor:"value,omitempty"`
	Error *entities.ErrorDetail `cbor:"error,omitempty"`
}

// CallbackWire asks the guest to run the callback registered under Handle.
type CallbackWire struct {
	Args   []ValueWire `cbor:"args"`
	Handle uint32      `cbor:"handle"`
}

// NumberWire returns the wire form of a number.
func NumberWire(f float64) ValueWire {
	return ValueWire{Kind: entities.KindNumber, Num: f}
}

// StringWire returns the inline wire form of a string.
func StringWire(s string) ValueWire {
	return ValueWire{Kind: entities.KindString, Str: s}
}

// BytesWire returns the inline wire form of a buffer.
func BytesWire(b []byte) ValueWire {
	return ValueWire{Kind: entities.KindBuffer, Bytes: b}
}

// RefWire returns a string or buffer that references guest memory.
func RefWire(kind entities.Kind, ptr, length uint32) ValueWire {
	return ValueWire{Kind: kind, Ptr: ptr, Len: length}
}

// FunctionWire returns the wire form of a guest callback.
func FunctionWire(export string, handle uint32) ValueWire {
	return ValueWire{Kind: entities.KindFunction, Export: export, Handle: handle}
}

// IsRef reports whether the value's payload lives in guest memory.
func (v ValueWire) IsRef() bool {
	return v.Ptr != 0
}

// encMode uses canonical mode for deterministic encoding.
var encMode cbor.EncMode

// decMode rejects unknown fields so ABI drift fails loudly.
var decMode cbor.DecMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("wireformat: failed to create CBOR enc mode: %v", err))
	}
	encMode = em

	dm, err := cbor.DecOptions{
		ExtraReturnErrors: cbor.ExtraDecErrorUnknownField,
		DefaultMapType:    reflect.TypeOf(map[string]any(nil)),
	}.DecMode()
	if err != nil {
		panic(fmt.Sprintf("wireformat: failed to create CBOR dec mode: %v", err))
	}
	decMode = dm
}

func encode(typ string, v any) ([]byte, error) {
	b, err := encMode.Marshal(v)
	if err != nil {
		return nil, &errors.WireFormatError{Operation: "encode", Type: typ, Err: err}
	}
	return b, nil
}

func decode(typ string, data []byte, v any) error {
	if err := decMode.Unmarshal(data, v); err != nil {
		return &errors.WireFormatError{Operation: "decode", Type: typ, Err: err}
	}
	return nil
}

// EncodeCall serializes a CallWire.
func EncodeCall(c *CallWire) ([]byte, error) {
	return encode("CallWire", c)
}

// DecodeCall deserializes a CallWire.
func DecodeCall(data []byte) (*CallWire, error) {
	var c CallWire
	if err := decode("CallWire", data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// EncodeResult serializes a ResultWire.
func EncodeResult(r *ResultWire) ([]byte, error) {
	return encode("ResultWire", r)
}

// DecodeResult deserializes a ResultWire.
func DecodeResult(data []byte) (*ResultWire, error) {
	var r ResultWire
	if err := decode("ResultWire", data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// EncodeCallback serializes a CallbackWire.
func EncodeCallback(c *CallbackWire) ([]byte, error) {
	return encode("CallbackWire", c)
}

// DecodeCallback deserializes a CallbackWire.
func DecodeCallback(data []byte) (*CallbackWire, error) {
	var c CallbackWire
	if err := decode("CallbackWire", data, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// ErrorResult returns a ResultWire carrying err in structured form.
func ErrorResult(err error) *ResultWire {
	return &ResultWire{Error: errors.ToErrorDetail(err)}
}
