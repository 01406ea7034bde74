package wazero

import (
	"context"
	"fmt"

	"github.com/archernet/callbridge/domain/entities"
	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/value"
	"github.com/archernet/callbridge/wireformat"
)

// guestArgs is the argument list of one guest call. Positions are resolved
// against guest memory only when read.
type guestArgs struct {
	g        *guest
	wires    []wireformat.ValueWire
	resolved []value.Value
	done     []bool
}

func newGuestArgs(g *guest, wires []wireformat.ValueWire) *guestArgs {
	return &guestArgs{
		g:        g,
		wires:    wires,
		resolved: make([]value.Value, len(wires)),
		done:     make([]bool, len(wires)),
	}
}

// Len implements value.List.
func (a *guestArgs) Len() int {
	return len(a.wires)
}

// At implements value.List.
func (a *guestArgs) At(i int) value.Value {
	if i < 0 || i >= len(a.wires) {
		return value.Null()
	}
	if !a.done[i] {
		a.resolved[i] = a.g.resolve(a.wires[i])
		a.done[i] = true
	}
	return a.resolved[i]
}

// checkWires verifies every argument has a known kind and that references
// lie inside guest memory, so later resolution cannot fail.
func (g *guest) checkWires(wires []wireformat.ValueWire) error {
	for i, w := range wires {
		if !w.Kind.Valid() {
			return fmt.Errorf("argument %d: unknown kind %d", i, w.Kind)
		}
		if (w.Kind == entities.KindString || w.Kind == entities.KindBuffer) && !g.inBounds(w.Ptr, w.Len) {
			return fmt.Errorf("argument %d: reference (ptr %#x, len %d) outside guest memory", i, w.Ptr, w.Len)
		}
	}
	return nil
}

// resolve turns a checked wire value into a host value. Strings are copied;
// buffers alias guest memory.
func (g *guest) resolve(w wireformat.ValueWire) value.Value {
	switch w.Kind {
	case entities.KindNumber:
		return value.Number(w.Num)
	case entities.KindString:
		if !w.IsRef() {
			return value.String(w.Str)
		}
		b, _ := g.mem.Read(w.Ptr, w.Len)
		return value.String(string(b))
	case entities.KindBuffer:
		if !w.IsRef() {
			return value.Buffer(w.Bytes)
		}
		b, _ := g.mem.Read(w.Ptr, w.Len)
		return value.Buffer(b)
	case entities.KindFunction:
		return value.Func(newGuestFunction(g, w.Export, w.Handle))
	default:
		return value.Null()
	}
}

// encode writes a host value for the guest. Strings and buffers are copied
// into freshly allocated guest memory, which the guest then owns.
func (g *guest) encode(ctx context.Context, v value.Value) (wireformat.ValueWire, error) {
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
		ptr, err := g.writeBytes(ctx, text)
		if err != nil {
			return wireformat.ValueWire{}, err
		}
		return wireformat.RefWire(entities.KindString, ptr, uint32(len(text))), nil //nolint:gosec // G115: bounded by guest memory
	case value.KindBuffer:
		view, err := value.BorrowBuffer(v)
		if err != nil {
			return wireformat.ValueWire{}, err
		}
		ptr, err := g.writeBytes(ctx, view.Bytes())
		if err != nil {
			return wireformat.ValueWire{}, err
		}
		return wireformat.RefWire(entities.KindBuffer, ptr, uint32(view.Len())), nil //nolint:gosec // G115: bounded by guest memory
	default:
		return wireformat.ValueWire{}, &bridgeerrors.ConversionError{
			Position: -1,
			Kind:     v.Kind(),
			Err:      fmt.Errorf("%s values cannot be passed to a guest", v.Kind()),
		}
	}
}

// decode reads a value the guest returned. Referenced bytes are copied so
// the guest may free them.
func (g *guest) decode(w wireformat.ValueWire) (value.Value, error) {
	switch w.Kind {
	case entities.KindNull:
		return value.Null(), nil
	case entities.KindNumber:
		return value.Number(w.Num), nil
	case entities.KindString:
		if !w.IsRef() {
			return value.String(w.Str), nil
		}
		b, err := g.readCopy(w.Ptr, w.Len)
		if err != nil {
			return value.Null(), err
		}
		return value.String(string(b)), nil
	case entities.KindBuffer:
		if !w.IsRef() {
			return value.CopyBuffer(w.Bytes), nil
		}
		b, err := g.readCopy(w.Ptr, w.Len)
		if err != nil {
			return value.Null(), err
		}
		return value.Buffer(b), nil
	case entities.KindFunction:
		return value.Func(newGuestFunction(g, w.Export, w.Handle)), nil
	default:
		return value.Null(), fmt.Errorf("unknown kind %d", w.Kind)
	}
}
