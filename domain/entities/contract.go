package entities

import "strings"

// Contract describes the argument shape an exposed function requires.
// Positions below MinArity must be present; positions covered by Params are
// type-checked whenever present; positions past Params are not inspected.
type Contract struct {
	// Name is the exposed function name.
	Name string `json:"name" yaml:"name" toml:"name" validate:"required"`

	// Params lists the expected kind per position.
	Params []Kind `json:"params,omitempty" yaml:"params,omitempty" toml:"params,omitempty" validate:"dive,validkind"`

	// MinArity is the number of leading positions that are required.
	MinArity int `json:"min_arity" yaml:"min_arity" toml:"min_arity" validate:"gte=0"`
}

// NewContract builds a contract where every listed position is required.
func NewContract(name string, params ...Kind) Contract {
	return Contract{
		Name:     name,
		Params:   params,
		MinArity: len(params),
	}
}

// Optional returns a copy of c with MinArity lowered to required, so that
// trailing params become optional but are still checked when supplied.
func (c Contract) Optional(required int) Contract {
	c.MinArity = required
	return c
}

// Expected returns the kind declared for position i.
func (c Contract) Expected(i int) (Kind, bool) {
	if i < 0 || i >= len(c.Params) {
		return KindNull, false
	}
	return c.Params[i], true
}

// CheckedPositions returns how many positions of an n-length argument list
// must be type-checked.
func (c Contract) CheckedPositions(n int) int {
	if n < len(c.Params) {
		return n
	}
	return len(c.Params)
}

// CallbackPositions returns the positions that carry host functions.
func (c Contract) CallbackPositions() []int {
	var positions []int
	for i, k := range c.Params {
		if k == KindFunction {
			positions = append(positions, i)
		}
	}
	return positions
}

// String renders the contract as a signature, marking optional positions
// with a trailing "?".
func (c Contract) String() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('(')
	for i, k := range c.Params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k.String())
		if i >= c.MinArity {
			b.WriteByte('?')
		}
	}
	b.WriteByte(')')
	return b.String()
}
