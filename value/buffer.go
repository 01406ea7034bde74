package value

import (
	"errors"

	bridgeerrors "github.com/archernet/callbridge/domain/errors"
)

// ErrViewReleased is the panic value raised when a view is used after the
// call frame that borrowed it has returned.
var ErrViewReleased = errors.New("value: buffer view used after its call frame returned")

// View is a borrowed, non-owning view of a host buffer. Writes through
// Bytes are visible to the host; no copy is made.
type View struct {
	data     []byte
	released bool
}

// BorrowBuffer returns a view aliasing the bytes of a buffer value.
// The view stays valid as long as the caller keeps the host value alive;
// inside a call, prefer Scope.Borrow so the view is released with the frame.
func BorrowBuffer(v Value) (*View, error) {
	if v.kind != KindBuffer {
		return nil, &bridgeerrors.TypeMismatchError{Position: -1, Expected: KindBuffer, Got: v.kind}
	}
	// Full slice expression: appending must reallocate instead of writing
	// past the host-owned region.
	return &View{data: v.buf[:len(v.buf):len(v.buf)]}, nil
}

// Bytes returns the aliased bytes. It panics with ErrViewReleased if the
// view has been released.
func (v *View) Bytes() []byte {
	if v.released {
		panic(ErrViewReleased)
	}
	return v.data
}

// Len returns the number of bytes in the view, or 0 once released.
func (v *View) Len() int {
	if v.released {
		return 0
	}
	return len(v.data)
}

// Valid reports whether the view may still be used.
func (v *View) Valid() bool {
	return !v.released
}

// Clone copies the viewed bytes so they can be retained past the call.
func (v *View) Clone() []byte {
	b := v.Bytes()
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

func (v *View) release() {
	v.released = true
	v.data = nil
}

// Scope tracks the views borrowed during one call frame. Closing the scope
// releases them all. A Scope is not safe for concurrent use.
type Scope struct {
	views  []*View
	closed bool
}

// NewScope opens a call-frame scope.
func NewScope() *Scope {
	return &Scope{}
}

// Borrow returns a view of a buffer value that is released when the scope
// closes. Borrowing through a closed scope panics.
func (s *Scope) Borrow(v Value) (*View, error) {
	if s.closed {
		panic(ErrViewReleased)
	}
	view, err := BorrowBuffer(v)
	if err != nil {
		return nil, err
	}
	s.views = append(s.views, view)
	return view, nil
}

// Len returns the number of live views in the scope.
func (s *Scope) Len() int {
	return len(s.views)
}

// Close releases every view borrowed through the scope. It is idempotent.
func (s *Scope) Close() {
	for _, v := range s.views {
		v.release()
	}
	s.views = nil
	s.closed = true
}
