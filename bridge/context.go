package bridge

import (
	"context"
	"log/slog"

	"github.com/archernet/callbridge/domain/entities"
	bridgelog "github.com/archernet/callbridge/log"
	"github.com/archernet/callbridge/value"
)

// CallContext wraps a standard context.Context with call-scoped helpers.
// It lives exactly as long as one Invoke.
type CallContext interface {
	context.Context

	// FunctionName returns the exposed name being invoked.
	FunctionName() string

	// Contract returns the contract the arguments were validated against.
	Contract() entities.Contract

	// Scope returns the call-frame scope that owns borrowed buffer views.
	Scope() *value.Scope

	// Logger returns the logger for this call.
	Logger() *slog.Logger

	// SetValue stores a call-scoped value. Unlike context.WithValue,
	// this mutates the existing CallContext.
	SetValue(key, value any)

	// GetValue retrieves a call-scoped value set by SetValue.
	GetValue(key any) (value any, ok bool)

	// InvokeCallback converts args to host values and calls fn synchronously.
	InvokeCallback(fn value.Value, args ...any) (value.Value, error)
}

// callContext is the concrete implementation of CallContext.
type callContext struct {
	context.Context
	values   map[any]any
	scope    *value.Scope
	logger   *slog.Logger
	contract entities.Contract
}

func newCallContext(ctx context.Context, contract entities.Contract, logger *slog.Logger) *callContext {
	if l, ok := bridgelog.Lookup(ctx); ok {
		logger = l
	}
	return &callContext{
		Context:  ctx,
		contract: contract,
		scope:    value.NewScope(),
		logger:   logger.With("function", contract.Name),
	}
}

// FunctionName returns the exposed name being invoked.
func (c *callContext) FunctionName() string {
	return c.contract.Name
}

// Contract returns the validated contract.
func (c *callContext) Contract() entities.Contract {
	return c.contract
}

// Scope returns the call-frame scope.
func (c *callContext) Scope() *value.Scope {
	return c.scope
}

// Logger returns the call logger.
func (c *callContext) Logger() *slog.Logger {
	return c.logger
}

// SetValue stores a call-scoped value.
func (c *callContext) SetValue(key, val any) {
	if c.values == nil {
		c.values = make(map[any]any)
	}
	c.values[key] = val
}

// GetValue retrieves a call-scoped value.
func (c *callContext) GetValue(key any) (any, bool) {
	v, ok := c.values[key]
	return v, ok
}

// InvokeCallback calls a host function from within this call.
func (c *callContext) InvokeCallback(fn value.Value, args ...any) (value.Value, error) {
	return InvokeCallback(c, fn, args...)
}

// FunctionNameFrom returns the exposed name of the call ctx belongs to, if any.
func FunctionNameFrom(ctx context.Context) string {
	if cc, ok := ctx.(CallContext); ok {
		return cc.FunctionName()
	}
	return ""
}

func loggerFrom(ctx context.Context) *slog.Logger {
	if cc, ok := ctx.(CallContext); ok {
		return cc.Logger()
	}
	return bridgelog.FromContext(ctx)
}
