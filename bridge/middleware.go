package bridge

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/value"
)

// Middleware wraps a Handler to add cross-cutting behavior.
// Middleware executes in FIFO order (first registered wraps first, onion model).
//
// Example usage:
//
//	timing := func(next Handler) Handler {
//	    return func(cc CallContext, args value.List) (value.Value, error) {
//	        start := time.Now()
//	        defer func() { cc.Logger().Debug("took", "d", time.Since(start)) }()
//	        return next(cc, args)
//	    }
//	}
type Middleware func(next Handler) Handler

// PanicRecoveryMiddleware converts panics raised during a call into an
// *errors.InternalError. Typed bridge errors raised as panics by the
// converters (e.g. a *TypeMismatchError from an accessor used on the
// wrong variant) are returned as-is.
func PanicRecoveryMiddleware() Middleware {
	return func(next Handler) Handler {
		return func(cc CallContext, args value.List) (result value.Value, err error) {
			defer func() {
				if r := recover(); r != nil {
					result = value.Null()
					err = recovered(cc.FunctionName(), r)
				}
			}()
			return next(cc, args)
		}
	}
}

func recovered(function string, r any) error {
	switch e := r.(type) {
	case *bridgeerrors.TypeMismatchError:
		if e.Function == "" {
			e.Function = function
		}
		return e
	case *bridgeerrors.ConversionError:
		if e.Function == "" {
			e.Function = function
		}
		return e
	case error:
		return &bridgeerrors.InternalError{
			Err:      e,
			Function: function,
			Message:  "panic: " + e.Error(),
			Stack:    debug.Stack(),
		}
	default:
		return &bridgeerrors.InternalError{
			Function: function,
			Message:  fmt.Sprintf("panic: %v", r),
			Stack:    debug.Stack(),
		}
	}
}

// LoggingMiddleware logs every invocation at debug level and failures at warn.
// A nil logger uses the call's own logger.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next Handler) Handler {
		return func(cc CallContext, args value.List) (value.Value, error) {
			l := logger
			if l == nil {
				l = cc.Logger()
			}
			start := time.Now()
			l.DebugContext(cc, "invoking exposed function", "function", cc.FunctionName(), "args", args.Len())

			result, err := next(cc, args)
			if err != nil {
				detail := bridgeerrors.ToErrorDetail(err)
				l.WarnContext(cc, "exposed function failed",
					"function", cc.FunctionName(),
					"error_type", detail.Type,
					"error", err,
				)
				return result, err
			}
			l.DebugContext(cc, "exposed function completed",
				"function", cc.FunctionName(),
				"result", result.Kind().String(),
				"duration", time.Since(start),
			)
			return result, nil
		}
	}
}
