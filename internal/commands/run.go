package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/okra-platform/striter/internal/config"
	"github.com/okra-platform/striter/internal/guest"
	"github.com/okra-platform/striter/internal/hostapi"
	"github.com/okra-platform/striter/internal/watch"
)

type RunOptions struct {
	Path string
	Args []string
	// Watch re-runs the module each time the file changes, until ctx is done
	Watch bool
}

// Run executes a WASI guest with the configured host APIs linked in
func (c *Controller) Run(ctx context.Context, opts RunOptions) error {
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}

	registry, err := c.registry()
	if err != nil {
		return err
	}

	if !opts.Watch {
		return c.runOnce(ctx, cfg, registry, opts)
	}
	return c.runWatching(ctx, cfg, registry, opts)
}

func (c *Controller) runWatching(ctx context.Context, cfg *config.Config, registry hostapi.Registry, opts RunOptions) error {
	logger := zerolog.Ctx(ctx)

	changes := make(chan struct{}, 1)
	watcher, err := watch.NewFileWatcher(opts.Path, watch.DefaultDebounce, func(path string, op fsnotify.Op) {
		logger.Debug().Str("path", path).Stringer("op", op).Msg("module changed")
		select {
		case changes <- struct{}{}:
		default:
		}
	})
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	watchErr := make(chan error, 1)
	go func() {
		watchErr <- watcher.Start(ctx)
	}()

	for {
		if err := c.runOnce(ctx, cfg, registry, opts); err != nil {
			logger.Error().Err(err).Str("module", opts.Path).Msg("guest failed")
		}
		logger.Info().Str("module", watcher.Path()).Msg("waiting for changes")

		select {
		case <-ctx.Done():
			return nil
		case err := <-watchErr:
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		case <-changes:
		}
	}
}

func (c *Controller) runOnce(ctx context.Context, cfg *config.Config, registry hostapi.Registry, opts RunOptions) error {
	wasmBytes, err := os.ReadFile(opts.Path)
	if err != nil {
		return fmt.Errorf("failed to read module: %w", err)
	}

	logger := zerolog.Ctx(ctx)

	module, err := guest.Compile(ctx, wasmBytes)
	if err != nil {
		return err
	}
	defer module.Close(ctx)

	module.
		WithHostAPIs(cfg.Host.APIs).
		WithRegistry(registry).
		WithHostAPIConfig(hostapi.Config{
			ServiceName:     cfg.Host.ServiceName,
			Logger:          logger,
			MaxIterators:    cfg.Host.MaxIterators,
			IteratorTimeout: time.Duration(cfg.Host.IteratorTimeout),
			MaxRequestSize:  cfg.Host.MaxRequestSize,
			MaxResponseSize: cfg.Host.MaxResponseSize,
			MaxSourceUnits:  cfg.Host.MaxSourceUnits,
		})

	logger.Info().
		Str("module", opts.Path).
		Strs("apis", cfg.Host.APIs).
		Msg("running guest")

	return module.Run(ctx, guest.RunOptions{
		Args:   append([]string{opts.Path}, opts.Args...),
		Stdin:  os.Stdin,
		Stdout: c.out(),
		Stderr: os.Stderr,
	})
}
