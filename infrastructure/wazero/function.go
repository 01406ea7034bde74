package wazero

import (
	"context"
	"fmt"

	"github.com/archernet/callbridge/bridge"
	"github.com/archernet/callbridge/value"
	"github.com/archernet/callbridge/wireformat"
	"github.com/tetratelabs/wazero/api"
)

// guestFunction is a guest callback seen as a host function. Calling it
// re-enters the guest synchronously through its callback export.
type guestFunction struct {
	g      *guest
	export string
	handle uint32
}

func newGuestFunction(g *guest, export string, handle uint32) *guestFunction {
	if export == "" {
		export = wireformat.DefaultCallbackExport
	}
	return &guestFunction{g: g, export: export, handle: handle}
}

// Call implements value.Function. The receiver is not forwarded; guest
// callbacks have none. An error reported by the guest is returned as the
// guest's *entities.ErrorDetail.
func (f *guestFunction) Call(ctx context.Context, _ value.Value, args []value.Value) (value.Value, error) {
	fn := f.g.lookup(f.export)
	if fn == nil {
		return value.Null(), fmt.Errorf("guest module missing callback export %q", f.export)
	}

	base := f.g.base()
	defer func() {
		if f.g.base() != base {
			releaseViews(ctx)
		}
	}()

	wires := make([]wireformat.ValueWire, len(args))
	for i, a := range args {
		w, err := f.g.encode(ctx, a)
		if err != nil {
			return value.Null(), fmt.Errorf("callback argument %d: %w", i, err)
		}
		wires[i] = w
	}

	payload, err := wireformat.EncodeCallback(&wireformat.CallbackWire{Handle: f.handle, Args: wires})
	if err != nil {
		return value.Null(), err
	}
	result, err := f.g.roundTrip(ctx, fn, payload)
	if err != nil {
		return value.Null(), fmt.Errorf("guest callback %d: %w", f.handle, err)
	}
	return result, nil
}

// releaseViews closes the scope of the bridge call that issued a callback.
// Guest memory moved while the callback ran, so views borrowed before it
// alias a stale copy; releasing them turns later use into a panic instead
// of silently lost writes.
func releaseViews(ctx context.Context) {
	cc, ok := ctx.(bridge.CallContext)
	if !ok {
		return
	}
	if cc.Scope().Len() > 0 {
		cc.Logger().WarnContext(ctx, "wazero: guest memory moved during callback, releasing buffer views",
			"views", cc.Scope().Len())
	}
	cc.Scope().Close()
}

// roundTrip writes payload into guest memory, calls fn with its packed
// pointer and decodes the ResultWire the guest returns. A ResultWire error
// is returned as the guest's *entities.ErrorDetail.
func (g *guest) roundTrip(ctx context.Context, fn guestExport, payload []byte) (value.Value, error) {
	ptr, err := g.writeBytes(ctx, payload)
	if err != nil {
		return value.Null(), err
	}

	results, err := fn.Call(ctx, packPtrLen(ptr, uint32(len(payload)))) //nolint:gosec // G115: bounded by guest memory
	if err != nil {
		return value.Null(), fmt.Errorf("trapped: %w", err)
	}
	if len(results) == 0 {
		return value.Null(), nil
	}

	rptr, rlen := unpackPtrLen(results[0])
	if rlen == 0 {
		return value.Null(), nil
	}
	data, err := g.readCopy(rptr, rlen)
	g.free(ctx, rptr, rlen)
	if err != nil {
		return value.Null(), err
	}

	res, err := wireformat.DecodeResult(data)
	if err != nil {
		return value.Null(), err
	}
	if res.Error != nil {
		return value.Null(), res.Error
	}
	if res.Value == nil {
		return value.Null(), nil
	}
	return g.decode(*res.Value)
}

// CallGuest calls a guest export that follows the CallWire/ResultWire
// convention: (i64 packed CallWire) -> (i64 packed ResultWire).
func CallGuest(ctx context.Context, mod api.Module, export string, args ...value.Value) (value.Value, error) {
	g := newGuest(ctx, mod)
	fn := g.lookup(export)
	if fn == nil {
		return value.Null(), fmt.Errorf("export %q not found", export)
	}

	wires := make([]wireformat.ValueWire, len(args))
	for i, a := range args {
		w, err := g.encode(ctx, a)
		if err != nil {
			return value.Null(), fmt.Errorf("argument %d: %w", i, err)
		}
		wires[i] = w
	}

	payload, err := wireformat.EncodeCall(&wireformat.CallWire{Args: wires})
	if err != nil {
		return value.Null(), err
	}
	result, err := g.roundTrip(ctx, fn, payload)
	if err != nil {
		return value.Null(), fmt.Errorf("%s: %w", export, err)
	}
	return result, nil
}
