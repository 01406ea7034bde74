package entities

// Default settings for the WebAssembly host module.
const (
	DefaultModuleName     = "callbridge"
	DefaultMaxRequestSize = 1 << 20 // 1 MiB
)

// Config represents bridge configuration settings.
type Config struct {
	// ModuleName is the host module guests import exposed functions from.
	ModuleName string `json:"module_name,omitempty" yaml:"module_name,omitempty" toml:"module_name,omitempty" validate:"required" jsonschema:"minLength=1"`

	// Functions restricts the exposed functions to this allowlist.
	// Empty exposes every registered function.
	Functions []string `json:"functions,omitempty" yaml:"functions,omitempty" toml:"functions,omitempty" validate:"dive,required"`

	// Log configures the logger.
	Log LogConfig `json:"log,omitempty" yaml:"log,omitempty" toml:"log,omitempty"`

	// MaxRequestSize bounds the encoded call read from guest memory, in bytes.
	MaxRequestSize int `json:"max_request_size,omitempty" yaml:"max_request_size,omitempty" toml:"max_request_size,omitempty" validate:"gt=0" jsonschema:"minimum=1"`

	// RecoverPanics converts panics in native functions into errors.
	RecoverPanics bool `json:"recover_panics,omitempty" yaml:"recover_panics,omitempty" toml:"recover_panics,omitempty"`
}

// LogConfig selects level, output format and backend of the logger.
type LogConfig struct {
	Level   string `json:"level,omitempty" yaml:"level,omitempty" toml:"level,omitempty" validate:"omitempty,oneof=debug info warn error" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
	Format  string `json:"format,omitempty" yaml:"format,omitempty" toml:"format,omitempty" validate:"omitempty,oneof=text json" jsonschema:"enum=text,enum=json"`
	Backend string `json:"backend,omitempty" yaml:"backend,omitempty" toml:"backend,omitempty" validate:"omitempty,oneof=slog zap" jsonschema:"enum=slog,enum=zap"`
}

// DefaultConfig returns the default bridge configuration.
func DefaultConfig() Config {
	return Config{
		ModuleName:     DefaultModuleName,
		MaxRequestSize: DefaultMaxRequestSize,
		RecoverPanics:  true,
		Log: LogConfig{
			Level:   "info",
			Format:  "text",
			Backend: "slog",
		},
	}
}

// ConfigOption is a functional option for configuring bridge settings.
type ConfigOption func(*Config)

// WithModuleName sets the host module name.
func WithModuleName(name string) ConfigOption {
	return func(c *Config) {
		if name != "" {
			c.ModuleName = name
		}
	}
}

// WithMaxRequestSize sets the request size bound.
func WithMaxRequestSize(n int) ConfigOption {
	return func(c *Config) {
		if n > 0 {
			c.MaxRequestSize = n
		}
	}
}

// WithFunctions sets the allowlist of exposed functions.
func WithFunctions(names ...string) ConfigOption {
	return func(c *Config) {
		c.Functions = names
	}
}

// WithLogLevel sets the logging verbosity level.
func WithLogLevel(level string) ConfigOption {
	return func(c *Config) {
		c.Log.Level = level
	}
}

// NewConfig creates a new Config with the given options.
func NewConfig(opts ...ConfigOption) Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}
