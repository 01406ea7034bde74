package host

import (
	"io"
	"log/slog"

	"github.com/archernet/callbridge/bridge"
	"github.com/archernet/callbridge/domain/entities"
)

// Option defines a functional option for configuring the Executor.
type Option func(*Executor)

// WithRegistry configures the executor with the registry exposed to guests.
func WithRegistry(registry *bridge.Registry) Option {
	return func(e *Executor) {
		e.registry = registry
	}
}

// WithLogger sets the logger for adapter and module failures.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		e.logger = logger
	}
}

// WithModuleName sets the host module name guests import from.
func WithModuleName(name string) Option {
	return func(e *Executor) {
		e.moduleName = name
	}
}

// WithMaxRequestSize bounds the encoded call read from guest memory.
func WithMaxRequestSize(size uint32) Option {
	return func(e *Executor) {
		e.maxRequestSize = size
	}
}

// WithMemoryLimitPages caps guest memory at n 64KiB pages and reserves it
// up front, so guest memory never moves and borrowed buffer views stay
// valid across callbacks that allocate. Zero leaves memory unreserved; a
// callback that then moves guest memory releases the views of the call
// that issued it.
func WithMemoryLimitPages(n uint32) Option {
	return func(e *Executor) {
		e.memoryLimitPages = n
	}
}

// WithStdout routes the standard output of loaded guests to w.
func WithStdout(w io.Writer) Option {
	return func(e *Executor) {
		e.stdout = w
	}
}

// WithStderr routes the standard error of loaded guests to w.
func WithStderr(w io.Writer) Option {
	return func(e *Executor) {
		e.stderr = w
	}
}

// WithConfig applies the module name and request size of cfg.
func WithConfig(cfg *entities.Config) Option {
	return func(e *Executor) {
		e.moduleName = cfg.ModuleName
		if cfg.MaxRequestSize > 0 {
			e.maxRequestSize = uint32(cfg.MaxRequestSize) //nolint:gosec // G115: validated positive
		}
	}
}
