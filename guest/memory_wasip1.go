//go:build wasip1

package guest

import (
	"sync"
	"unsafe"
)

var pinned = struct {
	sync.Mutex
	*allocator
}{allocator: newAllocator(MaxTotalAllocations)}

// allocate reserves memory the host writes arguments and results into.
// Panics if the allocation would exceed MaxTotalAllocations.
//
//go:wasmexport allocate
func allocate(size uint32) uint32 {
	if size == 0 {
		return 0
	}
	buf := make([]byte, size)
	ptr := addressOf(buf)

	pinned.Lock()
	defer pinned.Unlock()
	if err := pinned.pin(ptr, buf); err != nil {
		panic(err.Error())
	}
	return ptr
}

// deallocate releases memory returned by allocate. Untracked pointers are
// ignored.
//
//go:wasmexport deallocate
func deallocate(ptr uint32, _ uint32) {
	pinned.Lock()
	defer pinned.Unlock()
	pinned.unpin(ptr)
}

func addressOf(b []byte) uint32 {
	//nolint:gosec // G103,G115: wasm32 linear memory address
	return uint32(uintptr(unsafe.Pointer(&b[0])))
}

// linear is the module's own linear memory.
type linear struct{}

func (linear) addr(b []byte) (uint32, error) {
	return addressOf(b), nil
}

func (linear) view(ptr, n uint32) ([]byte, bool) {
	if ptr == 0 {
		return nil, n == 0
	}
	//nolint:gosec // G103: valid unsafe.Pointer use for wasm linear memory
	return unsafe.Slice((*byte)(unsafe.Pointer(uintptr(ptr))), n), true
}

func (linear) free(ptr uint32) {
	deallocate(ptr, 0)
}

// send copies data into a pinned allocation and returns it packed. The
// receiver frees it.
func send(data []byte) uint64 {
	if len(data) == 0 {
		return 0
	}
	size := uint32(len(data)) //nolint:gosec // G115: wasm32 slice length
	ptr := allocate(size)
	dst, _ := linear{}.view(ptr, size)
	copy(dst, data)
	return uint64(ptr)<<32 | uint64(size)
}

// receive returns the bytes at packed and frees them.
func receive(packed uint64) []byte {
	ptr, n := uint32(packed>>32), uint32(packed) //nolint:gosec // G115: unpacking
	if ptr == 0 {
		return nil
	}
	src, _ := linear{}.view(ptr, n)
	data := make([]byte, n)
	copy(data, src)
	deallocate(ptr, n)
	return data
}
