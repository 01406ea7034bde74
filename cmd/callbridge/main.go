// Command callbridge loads a guest WebAssembly module, exposes the demo
// host functions to it and calls one of its exports.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/archernet/callbridge/application/config"
	"github.com/archernet/callbridge/bridge"
	"github.com/archernet/callbridge/domain/entities"
	"github.com/archernet/callbridge/host"
	bridgelog "github.com/archernet/callbridge/log"
)

func main() {
	var (
		configFile = flag.String("config", "", "Path to a YAML or TOML config file")
		wasmFile   = flag.String("wasm", "", "Path to the guest wasm module")
		funcName   = flag.String("func", "run", "Guest export to call")
		list       = flag.Bool("list", false, "List exposed host functions and exit")
	)
	flag.Parse()

	if *wasmFile == "" && !*list {
		fmt.Fprintln(os.Stderr, "Usage: callbridge -wasm <file.wasm> [-func name] [-config file]")
		fmt.Fprintln(os.Stderr, "       callbridge -list [-config file]")
		os.Exit(1)
	}

	if err := run(context.Background(), os.Stdout, *configFile, *wasmFile, *funcName, *list); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, out io.Writer, configFile, wasmFile, funcName string, listOnly bool) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}

	registry, err := newRegistry(cfg, logger)
	if err != nil {
		return fmt.Errorf("registry: %w", err)
	}

	if listOnly {
		for _, c := range registry.Contracts() {
			fmt.Fprintf(out, "  %s\n", c)
		}
		return nil
	}

	wasm, err := os.ReadFile(wasmFile)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	executor, err := host.NewExecutor(ctx,
		host.WithRegistry(registry),
		host.WithConfig(cfg),
		host.WithLogger(logger),
		host.WithStdout(out),
		host.WithStderr(os.Stderr),
	)
	if err != nil {
		return fmt.Errorf("create executor: %w", err)
	}
	defer func() { _ = executor.Close(ctx) }()

	module, err := executor.LoadModule(ctx, wasm)
	if err != nil {
		return fmt.Errorf("load module: %w", err)
	}
	defer func() { _ = module.Close(ctx) }()

	result, err := module.Call(ctx, funcName)
	if err != nil {
		return fmt.Errorf("call %s: %w", funcName, err)
	}
	fmt.Fprintf(out, "%s() = %s\n", funcName, result)
	return nil
}

func newLogger(cfg entities.LogConfig) (*slog.Logger, error) {
	level := slog.LevelInfo
	if cfg.Level != "" {
		var err error
		if level, err = bridgelog.ParseLevel(cfg.Level); err != nil {
			return nil, err
		}
	}
	return bridgelog.New(
		bridgelog.WithLevel(level),
		bridgelog.WithFormat(bridgelog.Format(cfg.Format)),
		bridgelog.WithBackend(bridgelog.Backend(cfg.Backend)),
	), nil
}

// newRegistry exposes the demo bundle, narrowed to cfg.Functions when set.
func newRegistry(cfg *entities.Config, logger *slog.Logger) (*bridge.Registry, error) {
	opts := []bridge.RegistryOption{
		bridge.WithBundle(bridge.DemoBundle()),
		bridge.WithLogger(logger),
	}
	if cfg.RecoverPanics {
		opts = append(opts, bridge.WithMiddleware(bridge.PanicRecoveryMiddleware()))
	}
	opts = append(opts, bridge.WithMiddleware(bridge.LoggingMiddleware(nil)))
	if len(cfg.Functions) > 0 {
		opts = append(opts, bridge.WithAllowlist(cfg.Functions...))
	}
	return bridge.NewRegistry(opts...)
}
