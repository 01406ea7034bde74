package bridge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/archernet/callbridge/application/validation"
	"github.com/archernet/callbridge/domain/entities"
	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	bridgelog "github.com/archernet/callbridge/log"
	"github.com/archernet/callbridge/value"
)

// Registry is an immutable collection of exposed functions.
// Once created via NewRegistry, functions cannot be added or removed,
// so lookups need no locking and a Registry may be shared freely.
type Registry struct {
	entries map[string]entry
	logger  *slog.Logger
	names   []string // sorted for consistent iteration
}

type entry struct {
	handler  Handler
	contract entities.Contract
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	exports    map[string]Export
	logger     *slog.Logger
	allowlist  []string
	middleware []Middleware
	errors     []error
}

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*registryBuilder)

// NewRegistry creates an immutable Registry with the given options.
// Returns an error if a name is registered twice, a contract is invalid,
// or the allowlist names a function that was never registered.
//
// Example usage:
//
//	registry, err := NewRegistry(
//	    WithMiddleware(PanicRecoveryMiddleware()),
//	    WithBundle(DemoBundle()),
//	    WithFunction(entities.NewContract("neg", entities.KindNumber), neg),
//	)
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{
		exports: make(map[string]Export),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0] // Return first error
	}

	if b.logger == nil {
		b.logger = bridgelog.Discard()
	}

	if len(b.allowlist) > 0 {
		allowed := make(map[string]Export, len(b.allowlist))
		for _, name := range b.allowlist {
			exp, ok := b.exports[name]
			if !ok {
				return nil, fmt.Errorf("allowlisted function %q is not registered", name)
			}
			allowed[name] = exp
		}
		b.exports = allowed
	}

	names := make([]string, 0, len(b.exports))
	for name := range b.exports {
		names = append(names, name)
	}
	sort.Strings(names)

	// Apply middleware chain to all handlers (FIFO order)
	entries := make(map[string]entry, len(b.exports))
	for name, exp := range b.exports {
		wrapped := Adapt(exp.Contract, exp.Fn)
		// Apply middleware in reverse order so first middleware wraps outermost
		for i := len(b.middleware) - 1; i >= 0; i-- {
			wrapped = b.middleware[i](wrapped)
		}
		entries[name] = entry{handler: wrapped, contract: exp.Contract}
	}

	return &Registry{
		entries: entries,
		names:   names,
		logger:  b.logger,
	}, nil
}

// Invoke dispatches a call by exposed name. Validation, conversion,
// native and callback failures all come back as errors; borrowed buffer
// views are released before Invoke returns.
func (r *Registry) Invoke(ctx context.Context, name string, args value.List) (value.Value, error) {
	e, ok := r.entries[name]
	if !ok {
		return value.Null(), &bridgeerrors.NotFoundError{Name: name}
	}

	cc := newCallContext(ctx, e.contract, r.logger)
	defer cc.scope.Close()

	result, err := e.handler(cc, args)
	if err != nil {
		return value.Null(), err
	}
	return result, nil
}

// Call is Invoke over an in-memory argument list.
func (r *Registry) Call(ctx context.Context, name string, args ...value.Value) (value.Value, error) {
	return r.Invoke(ctx, name, value.Values(args))
}

// Has returns true if a function with the given name is exposed.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Contract returns the contract of an exposed function.
func (r *Registry) Contract(name string) (entities.Contract, bool) {
	e, ok := r.entries[name]
	return e.contract, ok
}

// Names returns a sorted list of all exposed names.
func (r *Registry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// Contracts returns the contracts of all exposed functions, sorted by name.
func (r *Registry) Contracts() []entities.Contract {
	result := make([]entities.Contract, 0, len(r.names))
	for _, name := range r.names {
		result = append(result, r.entries[name].contract)
	}
	return result
}

// addExport registers an export under its contract name.
func (b *registryBuilder) addExport(exp Export) error {
	if exp.Fn == nil {
		return fmt.Errorf("function %q has no implementation", exp.Contract.Name)
	}
	if err := validation.ValidateContract(exp.Contract); err != nil {
		return err
	}
	if _, exists := b.exports[exp.Contract.Name]; exists {
		return fmt.Errorf("duplicate function name: %q", exp.Contract.Name)
	}
	b.exports[exp.Contract.Name] = exp
	return nil
}

// WithFunction exposes fn under contract.Name.
func WithFunction(contract entities.Contract, fn NativeFunc) RegistryOption {
	return WithExport(Export{Contract: contract, Fn: fn})
}

// WithExport exposes a prepared Export.
func WithExport(exp Export) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addExport(exp); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}

// WithLogger sets the logger handed to native functions through
// CallContext.Logger. A logger on the invocation context takes precedence.
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(b *registryBuilder) {
		b.logger = logger
	}
}

// WithAllowlist restricts the registry to the named functions. An empty
// allowlist exposes everything registered.
func WithAllowlist(names ...string) RegistryOption {
	return func(b *registryBuilder) {
		b.allowlist = append(b.allowlist, names...)
	}
}
