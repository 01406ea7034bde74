package value

// List is the ordered, fixed-length argument list the host supplies for
// one call. Positions are read on demand; implementations backed by foreign
// memory may resolve a position only when At is called.
type List interface {
	Len() int
	At(i int) Value
}

// Values is a List over an in-memory slice.
type Values []Value

// Len implements List.
func (v Values) Len() int {
	return len(v)
}

// At implements List. Out-of-range positions read as null.
func (v Values) At(i int) Value {
	if i < 0 || i >= len(v) {
		return Null()
	}
	return v[i]
}
