package guest

import (
	"context"
	"fmt"
	"sync"

	"github.com/archernet/callbridge/value"
)

// CallbackFunc is guest code the host may call back into.
type CallbackFunc func(args []value.Value) (value.Value, error)

// Callback is a registered CallbackFunc. It is a value.Function, so
// value.Func(cb) (or cb.Value()) passes it to the host.
type Callback struct {
	table  *callbackTable
	fn     CallbackFunc
	handle uint32
}

// Handle returns the opaque handle the host uses to address the callback.
func (c *Callback) Handle() uint32 {
	return c.handle
}

// Value returns the callback as a host value.
func (c *Callback) Value() value.Value {
	return value.Func(c)
}

// Call implements value.Function by calling the Go function directly.
func (c *Callback) Call(_ context.Context, _ value.Value, args []value.Value) (value.Value, error) {
	return c.fn(args)
}

// Release removes the callback from the table. Later host calls to its
// handle fail.
func (c *Callback) Release() {
	c.table.release(c.handle)
}

// callbackTable maps handles to callbacks. Handle 0 is never issued.
type callbackTable struct {
	fns  map[uint32]*Callback
	mu   sync.Mutex
	next uint32
}

func newCallbackTable() *callbackTable {
	return &callbackTable{fns: make(map[uint32]*Callback)}
}

func (t *callbackTable) register(fn CallbackFunc) *Callback {
	t.mu.Lock()
	defer t.mu.Unlock()

	for {
		t.next++
		if t.next == 0 {
			continue
		}
		if _, taken := t.fns[t.next]; !taken {
			break
		}
	}
	cb := &Callback{table: t, fn: fn, handle: t.next}
	t.fns[cb.handle] = cb
	return cb
}

func (t *callbackTable) lookup(handle uint32) (*Callback, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	cb, ok := t.fns[handle]
	if !ok {
		return nil, fmt.Errorf("no callback registered under handle %d", handle)
	}
	return cb, nil
}

func (t *callbackTable) release(handle uint32) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.fns, handle)
}

func (t *callbackTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.fns)
}

// callbacks is the table dispatched by the callbridge_callback export.
var callbacks = newCallbackTable()

// RegisterCallback makes fn callable by the host.
func RegisterCallback(fn CallbackFunc) *Callback {
	return callbacks.register(fn)
}
