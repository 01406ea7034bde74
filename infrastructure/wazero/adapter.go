package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/archernet/callbridge/bridge"
	"github.com/archernet/callbridge/domain/entities"
	bridgeerrors "github.com/archernet/callbridge/domain/errors"
	"github.com/archernet/callbridge/wireformat"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// AdapterConfig holds configuration for the wazero adapter.
type AdapterConfig struct {
	// Logger receives adapter failures. Default is slog.Default().
	Logger *slog.Logger

	// ModuleName is the host module name (default: "callbridge").
	ModuleName string

	// MaxRequestSize limits the size of incoming requests from guest memory.
	// Default is 1MB.
	MaxRequestSize uint32
}

// AdapterOption configures the adapter.
type AdapterOption func(*AdapterConfig)

// WithModuleName sets the host module name (default: "callbridge").
func WithModuleName(name string) AdapterOption {
	return func(c *AdapterConfig) {
		c.ModuleName = name
	}
}

// WithMaxRequestSize sets the maximum request size from guest memory.
func WithMaxRequestSize(size uint32) AdapterOption {
	return func(c *AdapterConfig) {
		c.MaxRequestSize = size
	}
}

// WithLogger sets the logger for adapter failures.
func WithLogger(logger *slog.Logger) AdapterOption {
	return func(c *AdapterConfig) {
		c.Logger = logger
	}
}

// defaultAdapterConfig returns the default adapter configuration.
func defaultAdapterConfig() AdapterConfig {
	return AdapterConfig{
		ModuleName:     entities.DefaultModuleName,
		MaxRequestSize: entities.DefaultMaxRequestSize,
		Logger:         slog.Default(),
	}
}

// RegisterWithRuntime registers all functions of a Registry with a wazero runtime.
// This creates a host module with the configured name (default: "callbridge")
// and exports every registry name with signature (i64) -> i64.
//
// Each export is wrapped to:
//   - Read the CallWire from guest memory using the packed i64 ptr+len format
//   - Invoke the registry with arguments resolved against guest memory
//   - Allocate result memory in the guest using the "allocate" export
//   - Write the ResultWire to guest memory
//   - Return packed i64 ptr+len of the result
//
// Failures never trap the guest; they come back as a ResultWire error.
func RegisterWithRuntime(ctx context.Context, runtime wazero.Runtime, registry *bridge.Registry, opts ...AdapterOption) error {
	cfg := defaultAdapterConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	builder := runtime.NewHostModuleBuilder(cfg.ModuleName)

	for _, name := range registry.Names() {
		funcName := name // capture for closure
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				stack[0] = handleCall(ctx, newGuest(ctx, mod), registry, funcName, stack[0], cfg)
			}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			Export(funcName)
	}

	if _, err := builder.Instantiate(ctx); err != nil {
		return fmt.Errorf("instantiate host module %q: %w", cfg.ModuleName, err)
	}
	return nil
}

// handleCall serves one guest call. It reads the request from guest memory,
// invokes the registry, and writes the result. Returns packed ptr+len of the
// ResultWire, or 0 if nothing could be written.
func handleCall(ctx context.Context, g *guest, registry *bridge.Registry, name string, packed uint64, cfg AdapterConfig) uint64 {
	logger := cfg.Logger.With("function", name, "guest", g.name)

	fail := func(err error) uint64 {
		detail := bridgeerrors.ToErrorDetail(err)
		logger.WarnContext(ctx, "wazero: call failed", "error_type", detail.Type, "error", err)
		return writeResult(ctx, g, logger, wireformat.ErrorResult(err))
	}

	ptr, length := unpackPtrLen(packed)

	if length > cfg.MaxRequestSize {
		return fail(&bridgeerrors.InternalError{
			Function: name,
			Message:  fmt.Sprintf("request size %d exceeds maximum %d bytes", length, cfg.MaxRequestSize),
		})
	}

	requestBytes, ok := g.mem.Read(ptr, length)
	if !ok {
		return fail(&bridgeerrors.InternalError{Function: name, Message: "failed to read request from guest memory"})
	}

	call, err := wireformat.DecodeCall(requestBytes)
	if err != nil {
		return fail(err)
	}
	if err := g.checkWires(call.Args); err != nil {
		return fail(&bridgeerrors.InternalError{Function: name, Err: err})
	}

	result, err := registry.Invoke(ctx, name, newGuestArgs(g, call.Args))
	if err != nil {
		return fail(err)
	}

	wire, err := g.encode(ctx, result)
	if err != nil {
		return fail(err)
	}
	res := &wireformat.ResultWire{}
	if !result.IsNull() {
		res.Value = &wire
	}
	return writeResult(ctx, g, logger, res)
}

// writeResult encodes res into guest memory. Returns packed ptr+len or 0
// on failure.
func writeResult(ctx context.Context, g *guest, logger *slog.Logger, res *wireformat.ResultWire) uint64 {
	data, err := wireformat.EncodeResult(res)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to encode result", "error", err)
		return 0
	}

	ptr, err := g.writeBytes(ctx, data)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to write result to guest memory", "error", err)
		return 0
	}

	return packPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: Data length is bounded by guest memory
}
