package guest

import "fmt"

// MaxTotalAllocations is the maximum total memory that can be allocated
// for the host. This prevents unbounded memory growth in WASM linear memory.
const MaxTotalAllocations = 100 * 1024 * 1024 // 100 MB

// allocator pins slices handed to the host so the Go GC does not collect
// them while the host holds their address.
type allocator struct {
	pins  map[uint32][]byte // ptr -> slice reference
	limit int
	total int // bytes currently pinned
}

func newAllocator(limit int) *allocator {
	return &allocator{pins: make(map[uint32][]byte), limit: limit}
}

// pin tracks b under ptr. Pinning an address twice keeps the first slice.
func (a *allocator) pin(ptr uint32, b []byte) error {
	if _, ok := a.pins[ptr]; ok {
		return nil
	}
	if a.total+len(b) > a.limit {
		return fmt.Errorf("guest: memory allocation limit exceeded (requested: %d bytes, current: %d bytes, limit: %d bytes)",
			len(b), a.total, a.limit)
	}
	a.pins[ptr] = b
	a.total += len(b)
	return nil
}

// unpin releases ptr. Untracked pointers are ignored. Accounting uses the
// stored length, not a caller-supplied size.
func (a *allocator) unpin(ptr uint32) {
	b, ok := a.pins[ptr]
	if !ok {
		return
	}
	delete(a.pins, ptr)
	a.total -= len(b)
	if a.total < 0 {
		a.total = 0
	}
}
