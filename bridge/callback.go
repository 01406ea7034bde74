package bridge

import (
	"context"
	"errors"

	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/value"
)

// InvokeCallback converts args to host values in order and calls fn
// synchronously with a null receiver, returning the host's result.
//
// Accepted argument types are those of value.FromNative. A failure reported
// by the host is returned as *errors.CallbackError carrying the host's
// message; nothing is retried.
func InvokeCallback(ctx context.Context, fn value.Value, args ...any) (value.Value, error) {
	function := FunctionNameFrom(ctx)

	if !fn.Is(value.KindFunction) {
		return value.Null(), &bridgeerrors.TypeMismatchError{
			Function: function,
			Position: -1,
			Expected: value.KindFunction,
			Got:      fn.Kind(),
		}
	}

	hostArgs := make([]value.Value, len(args))
	for i, a := range args {
		v, err := value.FromNative(a)
		if err != nil {
			return value.Null(), positioned(err, function, i)
		}
		hostArgs[i] = v
	}

	logger := loggerFrom(ctx)
	logger.DebugContext(ctx, "invoking callback", "function", function, "args", len(hostArgs))

	result, err := value.ToFunction(fn).Call(ctx, value.Null(), hostArgs)
	if err != nil {
		var cbErr *bridgeerrors.CallbackError
		if errors.As(err, &cbErr) {
			return value.Null(), err
		}
		msg := bridgeerrors.ToErrorDetail(err).Message
		if msg == "" {
			msg = err.Error()
		}
		logger.DebugContext(ctx, "callback threw", "function", function, "error", msg)
		return value.Null(), &bridgeerrors.CallbackError{Err: err, Function: function, Message: msg}
	}
	return result, nil
}
