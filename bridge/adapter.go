package bridge

import (
	"errors"

	"github.com/archernet/callbridge/domain/entities"
	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/value"
)

// NativeFunc is the signature of an exposed native function.
// A nil error with a zero Value returns null to the host.
type NativeFunc func(cc CallContext, args *Args) (value.Value, error)

// Handler is the unit that middleware wraps: it receives the raw host
// argument list of one call.
type Handler func(cc CallContext, args value.List) (value.Value, error)

// Export pairs a contract with its native implementation.
type Export struct {
	Fn       NativeFunc
	Contract entities.Contract
}

// Adapt returns the Handler that validates args against contract,
// materializes them and dispatches to fn.
func Adapt(contract entities.Contract, fn NativeFunc) Handler {
	return func(cc CallContext, list value.List) (value.Value, error) {
		if err := Validate(contract, list); err != nil {
			return value.Null(), err
		}

		args, err := materialize(cc, contract, list)
		if err != nil {
			return value.Null(), err
		}

		return fn(cc, args)
	}
}

// Validate checks an argument list against a contract without converting
// anything. Arity is checked first; then each position covered by the
// contract is checked left to right, and the first mismatch is returned
// without reading later positions. Null is accepted at optional positions.
func Validate(contract entities.Contract, list value.List) error {
	n := list.Len()
	if n < contract.MinArity {
		return &bridgeerrors.ArityError{Function: contract.Name, Min: contract.MinArity, Got: n}
	}

	for i := 0; i < contract.CheckedPositions(n); i++ {
		want := contract.Params[i]
		got := list.At(i).Kind()
		if got == want {
			continue
		}
		if got == value.KindNull && i >= contract.MinArity {
			continue
		}
		return &bridgeerrors.TypeMismatchError{
			Function: contract.Name,
			Position: i,
			Expected: want,
			Got:      got,
		}
	}
	return nil
}

// materialize converts the checked positions in order. Buffers are borrowed
// through the call scope so they are released when the call returns.
func materialize(cc CallContext, contract entities.Contract, list value.List) (*Args, error) {
	args := &Args{list: list, scope: cc.Scope(), native: make([]any, contract.CheckedPositions(list.Len()))}

	for i := range args.native {
		v := list.At(i)
		switch v.Kind() {
		case value.KindNumber:
			args.native[i] = value.ToNumber(v)
		case value.KindString:
			b, err := value.ToUTF8String(v)
			if err != nil {
				return nil, positioned(err, contract.Name, i)
			}
			args.native[i] = b
		case value.KindBuffer:
			view, err := cc.Scope().Borrow(v)
			if err != nil {
				return nil, positioned(err, contract.Name, i)
			}
			args.native[i] = view
		case value.KindFunction:
			args.native[i] = value.ToFunction(v)
		case value.KindNull:
			args.native[i] = nil
		}
	}
	return args, nil
}

// positioned stamps the function name and argument position on errors
// raised by the converters, which do not know either.
func positioned(err error, function string, position int) error {
	var convErr *bridgeerrors.ConversionError
	if errors.As(err, &convErr) {
		convErr.Function = function
		convErr.Position = position
		return convErr
	}
	var mismatch *bridgeerrors.TypeMismatchError
	if errors.As(err, &mismatch) {
		mismatch.Function = function
		mismatch.Position = position
		return mismatch
	}
	return err
}
