package wazero

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero/api"
)

// Guest exports used by the bridge.
const (
	allocateExport   = "allocate"
	deallocateExport = "deallocate"
)

// guestMemory is the subset of api.Memory the bridge uses.
type guestMemory interface {
	Read(offset, byteCount uint32) ([]byte, bool)
	Write(offset uint32, v []byte) bool
	Size() uint32
}

// guestExport is the subset of api.Function the bridge uses.
type guestExport interface {
	Call(ctx context.Context, params ...uint64) ([]uint64, error)
}

// guest is one instantiated guest module as seen from the host.
type guest struct {
	mem    guestMemory
	lookup func(name string) guestExport
	name   string
}

func newGuest(ctx context.Context, mod api.Module) *guest {
	return &guest{
		name: GetGuestName(ctx, mod),
		mem:  mod.Memory(),
		lookup: func(name string) guestExport {
			fn := mod.ExportedFunction(name)
			if fn == nil {
				return nil
			}
			return fn
		},
	}
}

// inBounds reports whether [ptr, ptr+length) lies inside guest memory.
func (g *guest) inBounds(ptr, length uint32) bool {
	return uint64(ptr)+uint64(length) <= uint64(g.mem.Size())
}

// base returns the address of the first byte of guest memory, or nil for
// an empty memory. It changes when growth moves memory to a new array.
func (g *guest) base() *byte {
	b, ok := g.mem.Read(0, 1)
	if !ok {
		return nil
	}
	return &b[0]
}

// alloc reserves size bytes through the guest's allocate export.
func (g *guest) alloc(ctx context.Context, size uint32) (uint32, error) {
	fn := g.lookup(allocateExport)
	if fn == nil {
		return 0, fmt.Errorf("guest module missing %q export", allocateExport)
	}
	results, err := fn.Call(ctx, uint64(size))
	if err != nil {
		return 0, fmt.Errorf("guest allocate failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("guest allocate returned no pointer")
	}
	return uint32(results[0]), nil //nolint:gosec // G115: WASM32 pointers are always 32-bit
}

// free releases memory through the guest's deallocate export, if it has one.
func (g *guest) free(ctx context.Context, ptr, size uint32) {
	if ptr == 0 {
		return
	}
	if fn := g.lookup(deallocateExport); fn != nil {
		_, _ = fn.Call(ctx, uint64(ptr), uint64(size))
	}
}

// writeBytes copies data into freshly allocated guest memory.
// Empty data is written as a zero pointer.
func (g *guest) writeBytes(ctx context.Context, data []byte) (uint32, error) {
	if len(data) == 0 {
		return 0, nil
	}
	ptr, err := g.alloc(ctx, uint32(len(data))) //nolint:gosec // G115: bounded by guest memory
	if err != nil {
		return 0, err
	}
	if !g.mem.Write(ptr, data) {
		return 0, fmt.Errorf("failed to write %d bytes to guest memory at %#x", len(data), ptr)
	}
	return ptr, nil
}

// readCopy returns an owned copy of a guest memory region.
func (g *guest) readCopy(ptr, length uint32) ([]byte, error) {
	if length == 0 {
		return []byte{}, nil
	}
	b, ok := g.mem.Read(ptr, length)
	if !ok {
		return nil, fmt.Errorf("guest memory read out of range (ptr %#x, len %d)", ptr, length)
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}

// packPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
// Unlike wireformat.UnpackPtrLen it never panics: values come from the guest.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}
