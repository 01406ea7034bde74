package guest

import (
	"context"
	"fmt"

	"github.com/archernet/callbridge/domain/entities"
	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/value"
	"github.com/archernet/callbridge/wireformat"
)

// memory is the guest's own linear memory as the codec sees it.
type memory interface {
	// addr returns the address of b, keeping b reachable until the
	// current host call returns.
	addr(b []byte) (uint32, error)

	// view returns [ptr, ptr+n) without copying.
	view(ptr, n uint32) ([]byte, bool)

	// free releases memory the host allocated through the allocate export.
	free(ptr uint32)
}

// encodeArg encodes a value passed to the host. Strings travel inline;
// buffers travel by address so the host aliases the caller's bytes.
func encodeArg(m memory, v value.Value) (wireformat.ValueWire, error) {
	switch v.Kind() {
	case value.KindNull:
		return wireformat.ValueWire{Kind: entities.KindNull}, nil
	case value.KindNumber:
		return wireformat.NumberWire(value.ToNumber(v)), nil
	case value.KindString:
		text, err := value.ToUTF8String(v)
		if err != nil {
			return wireformat.ValueWire{}, err
		}
		return wireformat.StringWire(string(text)), nil
	case value.KindBuffer:
		view, err := value.BorrowBuffer(v)
		if err != nil {
			return wireformat.ValueWire{}, err
		}
		b := view.Bytes()
		if len(b) == 0 {
			return wireformat.RefWire(entities.KindBuffer, 0, 0), nil
		}
		ptr, err := m.addr(b)
		if err != nil {
			return wireformat.ValueWire{}, err
		}
		return wireformat.RefWire(entities.KindBuffer, ptr, uint32(len(b))), nil //nolint:gosec // G115: wasm32 slice length
	case value.KindFunction:
		cb, ok := value.ToFunction(v).(*Callback)
		if !ok {
			return wireformat.ValueWire{}, &bridgeerrors.ConversionError{
				Position: -1,
				Kind:     entities.KindFunction,
				Err:      fmt.Errorf("only registered callbacks can be passed to the host"),
			}
		}
		return wireformat.FunctionWire(wireformat.DefaultCallbackExport, cb.handle), nil
	default:
		return wireformat.ValueWire{}, fmt.Errorf("unknown kind %d", v.Kind())
	}
}

func encodeArgs(m memory, args []value.Value) ([]wireformat.ValueWire, error) {
	wires := make([]wireformat.ValueWire, len(args))
	for i, a := range args {
		w, err := encodeArg(m, a)
		if err != nil {
			return nil, positioned(err, i)
		}
		wires[i] = w
	}
	return wires, nil
}

// encodeResult encodes a value the guest returns. Everything travels
// inline so nothing stays pinned after the export returns.
func encodeResult(v value.Value) (*wireformat.ValueWire, error) {
	var w wireformat.ValueWire
	switch v.Kind() {
	case value.KindNull:
		return nil, nil
	case value.KindNumber:
		w = wireformat.NumberWire(value.ToNumber(v))
	case value.KindString:
		text, err := value.ToUTF8String(v)
		if err != nil {
			return nil, err
		}
		w = wireformat.StringWire(string(text))
	case value.KindBuffer:
		view, err := value.BorrowBuffer(v)
		if err != nil {
			return nil, err
		}
		w = wireformat.BytesWire(view.Bytes())
	default:
		return nil, &bridgeerrors.ConversionError{
			Position: -1,
			Kind:     v.Kind(),
			Err:      fmt.Errorf("%s values cannot be returned to the host", v.Kind()),
		}
	}
	return &w, nil
}

// decodeArg decodes an argument the host wrote into guest memory.
// Buffers alias that memory, which stays allocated until the handler returns.
func decodeArg(m memory, w wireformat.ValueWire) (value.Value, error) {
	switch w.Kind {
	case entities.KindNull:
		return value.Null(), nil
	case entities.KindNumber:
		return value.Number(w.Num), nil
	case entities.KindString:
		if !w.IsRef() {
			return value.String(w.Str), nil
		}
		b, ok := m.view(w.Ptr, w.Len)
		if !ok {
			return value.Null(), fmt.Errorf("string reference out of range")
		}
		return value.String(string(b)), nil
	case entities.KindBuffer:
		if !w.IsRef() {
			return value.Buffer(w.Bytes), nil
		}
		b, ok := m.view(w.Ptr, w.Len)
		if !ok {
			return value.Null(), fmt.Errorf("buffer reference out of range")
		}
		return value.Buffer(b), nil
	default:
		return value.Null(), fmt.Errorf("%s values cannot be passed to a guest", w.Kind)
	}
}

// decodeResult decodes a value the host returned, copying referenced bytes
// and freeing them.
func decodeResult(m memory, w wireformat.ValueWire) (value.Value, error) {
	v, err := decodeArg(m, w)
	if err != nil {
		return value.Null(), err
	}
	if w.IsRef() {
		if v.Is(value.KindBuffer) {
			view, _ := value.BorrowBuffer(v)
			v = value.CopyBuffer(view.Bytes())
		}
		m.free(w.Ptr)
	}
	return v, nil
}

// freeRefs releases the memory the host allocated for wires.
func freeRefs(m memory, wires []wireformat.ValueWire) {
	for _, w := range wires {
		if w.IsRef() {
			m.free(w.Ptr)
		}
	}
}

// serve decodes args, runs fn and encodes its outcome. Memory the host
// allocated for the arguments is freed once fn returns.
func serve(m memory, wires []wireformat.ValueWire, fn CallbackFunc) *wireformat.ResultWire {
	defer freeRefs(m, wires)

	args := make([]value.Value, len(wires))
	for i, w := range wires {
		v, err := decodeArg(m, w)
		if err != nil {
			return wireformat.ErrorResult(positioned(err, i))
		}
		args[i] = v
	}

	result, err := fn(args)
	if err != nil {
		return wireformat.ErrorResult(err)
	}
	w, err := encodeResult(result)
	if err != nil {
		return wireformat.ErrorResult(err)
	}
	return &wireformat.ResultWire{Value: w}
}

// dispatchCallback serves one CallbackWire.
func dispatchCallback(m memory, table *callbackTable, data []byte) *wireformat.ResultWire {
	cw, err := wireformat.DecodeCallback(data)
	if err != nil {
		return wireformat.ErrorResult(err)
	}
	cb, err := table.lookup(cw.Handle)
	if err != nil {
		freeRefs(m, cw.Args)
		return wireformat.ErrorResult(err)
	}
	return serve(m, cw.Args, func(args []value.Value) (value.Value, error) {
		return cb.Call(context.Background(), value.Null(), args)
	})
}

// serveCall serves one CallWire addressed to a guest export.
func serveCall(m memory, data []byte, fn CallbackFunc) *wireformat.ResultWire {
	call, err := wireformat.DecodeCall(data)
	if err != nil {
		return wireformat.ErrorResult(err)
	}
	return serve(m, call.Args, fn)
}

// result turns a decoded ResultWire into a value or error.
func result(m memory, res *wireformat.ResultWire) (value.Value, error) {
	if res.Error != nil {
		return value.Null(), res.Error
	}
	if res.Value == nil {
		return value.Null(), nil
	}
	return decodeResult(m, *res.Value)
}

func positioned(err error, position int) error {
	if conv, ok := err.(*bridgeerrors.ConversionError); ok {
		conv.Position = position
		return conv
	}
	return fmt.Errorf("argument %d: %w", position, err)
}
