// Package watch reports changes to a single file, such as a guest module
// being rebuilt.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce groups the bursts of events compilers emit while writing
const DefaultDebounce = 100 * time.Millisecond

// FileWatcher calls onChange once a burst of changes to path has settled
type FileWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func(path string, op fsnotify.Op)
}

// NewFileWatcher watches path through its parent directory, so the file may
// be replaced or created after the watcher starts
func NewFileWatcher(path string, debounce time.Duration, onChange func(path string, op fsnotify.Op)) (*FileWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", filepath.Dir(abs), err)
	}

	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	return &FileWatcher{
		watcher:  watcher,
		path:     abs,
		debounce: debounce,
		onChange: onChange,
	}, nil
}

// Start blocks until ctx is done or the watcher is closed
func (fw *FileWatcher) Start(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending fsnotify.Op
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher channel closed")
			}
			if !fw.shouldNotify(event) {
				continue
			}

			pending |= event.Op
			if timer == nil {
				timer = time.NewTimer(fw.debounce)
			} else {
				timer.Reset(fw.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			op := pending
			pending = 0
			fw.onChange(fw.path, op)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher error channel closed")
			}
			if err != nil {
				logger.Warn().Err(err).Str("path", fw.path).Msg("watcher error")
			}
		}
	}
}

// shouldNotify reports whether event changes the watched file's contents
func (fw *FileWatcher) shouldNotify(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != fw.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

// Path returns the absolute path being watched
func (fw *FileWatcher) Path() string {
	return fw.path
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	return fw.watcher.Close()
}
