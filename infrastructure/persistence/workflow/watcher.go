package workflow

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	pkgerrors "github.com/zach-sndr/twitcanva/pkg/errors"
)

// Watcher monitors a workflow file for external modification and
// invokes registered callbacks when it changes. Editors and atomic
// saves replace the file by rename, so the parent directory is
// watched alongside the file itself.
type Watcher struct {
	path      string
	watcher   *fsnotify.Watcher
	logger    *zap.Logger
	onChange  []func(path string)
	mu        sync.RWMutex
	stopCh    chan struct{}
	doneCh    chan struct{}
	lastEvent time.Time
}

const watchDebounce = 200 * time.Millisecond

// NewWatcher creates a watcher for the given workflow file path. Call
// Start to begin watching and Stop to release resources.
func NewWatcher(path string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, pkgerrors.NewInternalError("failed to create file watcher").WithCause(err)
	}

	return &Watcher{
		path:    path,
		watcher: fsWatcher,
		logger:  logger,
		stopCh:  make(chan struct{}),
		doneCh:  make(chan struct{}),
	}, nil
}

// OnChange registers a callback invoked after the file changes.
// Callbacks run on the watcher goroutine and must not block.
func (w *Watcher) OnChange(fn func(path string)) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.onChange = append(w.onChange, fn)
}

// Start begins watching the file and its parent directory.
func (w *Watcher) Start() error {
	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return pkgerrors.NewInternalError("failed to watch workflow directory").WithCause(err)
	}
	// Watching the file directly catches in-place writes; the
	// directory watch above catches rename-based replacement.
	if _, err := os.Stat(w.path); err == nil {
		if err := w.watcher.Add(w.path); err != nil {
			w.logger.Warn("failed to watch workflow file directly",
				zap.String("path", w.path),
				zap.Error(err))
		}
	}

	go w.loop()

	w.logger.Info("watching workflow file", zap.String("path", w.path))
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
func (w *Watcher) Stop() {
	close(w.stopCh)
	w.watcher.Close()
	<-w.doneCh
}

func (w *Watcher) loop() {
	defer close(w.doneCh)

	for {
		select {
		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("workflow watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != filepath.Clean(w.path) {
		return
	}
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}

	// Atomic saves emit several events in quick succession; collapse
	// them into one notification.
	now := time.Now()
	if now.Sub(w.lastEvent) < watchDebounce {
		return
	}
	w.lastEvent = now

	// A rename replaces the inode, so the direct file watch dies with
	// the old file. Re-add it.
	if event.Op&(fsnotify.Create|fsnotify.Rename) != 0 {
		if _, err := os.Stat(w.path); err == nil {
			_ = w.watcher.Add(w.path)
		}
	}

	w.logger.Debug("workflow file changed",
		zap.String("path", w.path),
		zap.String("op", event.Op.String()))

	w.mu.RLock()
	callbacks := make([]func(string), len(w.onChange))
	copy(callbacks, w.onChange)
	w.mu.RUnlock()

	for _, fn := range callbacks {
		fn(w.path)
	}
}
