package guest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/okra-platform/striter/internal/hostapi"
	"github.com/rs/zerolog"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"
)

// CompiledModule is a WASM command module ready to run with host APIs linked in
type CompiledModule interface {
	// WithHostAPIs configures which host APIs the module can access
	WithHostAPIs(apis []string) CompiledModule

	// WithRegistry sets the registry used to create host API instances
	WithRegistry(registry hostapi.Registry) CompiledModule

	// WithHostAPIConfig sets the configuration for host APIs
	WithHostAPIConfig(config hostapi.Config) CompiledModule

	// Run instantiates the module and executes _start
	Run(ctx context.Context, opts RunOptions) error

	// Close releases the runtime and everything compiled into it
	Close(ctx context.Context) error
}

// RunOptions controls the guest's WASI environment
type RunOptions struct {
	Args   []string
	Env    map[string]string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// CleanupInterval is how often idle iterators are swept while the guest runs
	CleanupInterval time.Duration
}

// ExitError reports a non-zero exit code from the guest
type ExitError struct {
	Code uint32
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("guest exited with code %d", e.Code)
}

const defaultCleanupInterval = 30 * time.Second

// Compile creates a runtime with WASI and compiles the given module into it
func Compile(ctx context.Context, wasmBytes []byte) (CompiledModule, error) {
	if len(wasmBytes) == 0 {
		return nil, fmt.Errorf("wasm bytes cannot be empty")
	}

	runtime := wazero.NewRuntime(ctx)

	if _, err := wasi_snapshot_preview1.Instantiate(ctx, runtime); err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("failed to instantiate WASI: %w", err)
	}

	compiled, err := runtime.CompileModule(ctx, wasmBytes)
	if err != nil {
		runtime.Close(ctx)
		return nil, fmt.Errorf("failed to compile module: %w", err)
	}

	return &compiledModule{
		runtime:  runtime,
		compiled: compiled,
		hostAPIs: []string{},
	}, nil
}

type compiledModule struct {
	runtime       wazero.Runtime
	compiled      wazero.CompiledModule
	hostAPIs      []string
	registry      hostapi.Registry
	hostAPIConfig hostapi.Config
	ran           bool
}

func (m *compiledModule) WithHostAPIs(apis []string) CompiledModule {
	m.hostAPIs = apis
	return m
}

func (m *compiledModule) WithRegistry(registry hostapi.Registry) CompiledModule {
	m.registry = registry
	return m
}

func (m *compiledModule) WithHostAPIConfig(config hostapi.Config) CompiledModule {
	m.hostAPIConfig = config
	return m
}

func (m *compiledModule) Run(ctx context.Context, opts RunOptions) error {
	// Host modules are registered by name, so a runtime can host one run
	if m.ran {
		return fmt.Errorf("module has already been run")
	}
	m.ran = true

	logger := zerolog.Ctx(ctx)

	var set hostapi.Set
	if m.registry != nil && len(m.hostAPIs) > 0 {
		var err error
		set, err = m.registry.CreateSet(ctx, m.hostAPIs, m.hostAPIConfig)
		if err != nil {
			return fmt.Errorf("failed to create host API set: %w", err)
		}
		defer func() {
			if err := set.Close(); err != nil {
				logger.Warn().Err(err).Msg("failed to close host API set")
			}
		}()

		if err := hostapi.RegisterHostAPI(ctx, m.runtime, set); err != nil {
			return fmt.Errorf("failed to register host APIs: %w", err)
		}

		stop := m.sweep(ctx, set, opts.CleanupInterval)
		defer stop()
	}

	config := wazero.NewModuleConfig().
		WithName("").
		WithArgs(opts.Args...).
		WithSysWalltime().
		WithSysNanotime()
	if opts.Stdin != nil {
		config = config.WithStdin(opts.Stdin)
	}
	if opts.Stdout != nil {
		config = config.WithStdout(opts.Stdout)
	}
	if opts.Stderr != nil {
		config = config.WithStderr(opts.Stderr)
	}
	for k, v := range opts.Env {
		config = config.WithEnv(k, v)
	}

	logger.Debug().
		Strs("apis", m.hostAPIs).
		Strs("args", opts.Args).
		Msg("running guest")

	module, err := m.runtime.InstantiateModule(ctx, m.compiled, config)
	if module != nil {
		defer module.Close(ctx)
	}
	if err != nil {
		var exitErr *sys.ExitError
		if errors.As(err, &exitErr) {
			if exitErr.ExitCode() == 0 {
				return nil
			}
			return &ExitError{Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run module: %w", err)
	}

	return nil
}

// sweep periodically closes idle iterators until the returned func is called
func (m *compiledModule) sweep(ctx context.Context, set hostapi.Set, interval time.Duration) func() {
	if interval <= 0 {
		interval = defaultCleanupInterval
	}

	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := set.CleanupStaleIterators(); n > 0 {
					zerolog.Ctx(ctx).Debug().Int("count", n).Msg("closed idle iterators")
				}
			case <-done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() { close(done) }
}

func (m *compiledModule) Close(ctx context.Context) error {
	return m.runtime.Close(ctx)
}
