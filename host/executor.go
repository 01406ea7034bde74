package host

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/archernet/callbridge/bridge"
	"github.com/archernet/callbridge/domain/entities"
	wzadapter "github.com/archernet/callbridge/infrastructure/wazero"
	"github.com/archernet/callbridge/value"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// DefaultGuestName names modules loaded without a guest name on the context.
const DefaultGuestName = "guest"

// DefaultMemoryLimitPages caps guest memory at 128 MiB (64 KiB pages).
const DefaultMemoryLimitPages = 2048

// Executor manages the lifecycle of WASM guests.
type Executor struct {
	runtime          wazero.Runtime
	registry         *bridge.Registry
	logger           *slog.Logger
	stdout           io.Writer
	stderr           io.Writer
	moduleName       string
	maxRequestSize   uint32
	memoryLimitPages uint32
}

// NewExecutor creates a new executor with the given options.
// Without WithRegistry, guests see the demo functions behind panic recovery.
// Guest memory is reserved up to DefaultMemoryLimitPages unless
// WithMemoryLimitPages says otherwise.
func NewExecutor(ctx context.Context, opts ...Option) (*Executor, error) {
	e := &Executor{
		moduleName:       entities.DefaultModuleName,
		maxRequestSize:   entities.DefaultMaxRequestSize,
		memoryLimitPages: DefaultMemoryLimitPages,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	// Default registry if not provided
	if e.registry == nil {
		reg, err := bridge.NewRegistry(
			bridge.WithMiddleware(bridge.PanicRecoveryMiddleware()),
			bridge.WithBundle(bridge.DemoBundle()),
			bridge.WithLogger(e.logger),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create default registry: %w", err)
		}
		e.registry = reg
	}

	rtConfig := wazero.NewRuntimeConfig()
	if e.memoryLimitPages > 0 {
		rtConfig = rtConfig.
			WithMemoryLimitPages(e.memoryLimitPages).
			WithMemoryCapacityFromMax(true)
	}

	rt := wazero.NewRuntimeWithConfig(ctx, rtConfig)
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)
	e.runtime = rt

	err := wzadapter.RegisterWithRuntime(ctx, rt, e.registry,
		wzadapter.WithModuleName(e.moduleName),
		wzadapter.WithMaxRequestSize(e.maxRequestSize),
		wzadapter.WithLogger(e.logger),
	)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("failed to register exposed functions: %w", err)
	}

	return e, nil
}

// Registry returns the registry exposed to guests.
func (e *Executor) Registry() *bridge.Registry {
	return e.registry
}

// Close releases resources held by the executor.
func (e *Executor) Close(ctx context.Context) error {
	return e.runtime.Close(ctx)
}

// Module represents an instantiated WASM guest.
type Module struct {
	module api.Module
}

// LoadModule instantiates a WASM module. The module is named after the
// guest name on ctx (see infrastructure/wazero.WithGuestName). Reactor
// modules have their _initialize export run.
func (e *Executor) LoadModule(ctx context.Context, wasmBytes []byte) (*Module, error) {
	name, ok := wzadapter.GuestNameFromContext(ctx)
	if !ok {
		name = DefaultGuestName
	}

	cfg := wazero.NewModuleConfig().
		WithName(name).
		WithStartFunctions("_initialize")
	if e.stdout != nil {
		cfg = cfg.WithStdout(e.stdout)
	}
	if e.stderr != nil {
		cfg = cfg.WithStderr(e.stderr)
	}

	mod, err := e.runtime.InstantiateWithConfig(ctx, wasmBytes, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to instantiate module: %w", err)
	}

	return &Module{module: mod}, nil
}

// Name returns the module name.
func (m *Module) Name() string {
	return m.module.Name()
}

// Call invokes a guest export that takes a packed CallWire and returns a
// packed ResultWire. Strings and buffers are copied into guest memory.
func (m *Module) Call(ctx context.Context, export string, args ...value.Value) (value.Value, error) {
	return wzadapter.CallGuest(ctx, m.module, export, args...)
}

// Close closes the module.
func (m *Module) Close(ctx context.Context) error {
	return m.module.Close(ctx)
}
