package source

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/coolbeans/ontoscope/pkg/session"
)

// WatcherConfig configures a reload watcher.
type WatcherConfig struct {
	// DebounceDelay is how long to collect changes before reloading.
	DebounceDelay time.Duration

	// Logger for logging events.
	Logger *slog.Logger

	// OnReload is called after every reload attempt, with the new snapshot or
	// the error. Optional.
	OnReload func(snapshot *session.Snapshot, err error)
}

// Watcher reloads a local source into a session whenever one of its
// documents changes. A failed reload keeps the previous snapshot.
type Watcher struct {
	source  *LocalSource
	loader  *Loader
	session *session.Session
	config  WatcherConfig
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   bool

	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for the loader's source, which must be local.
func NewWatcher(loader *Loader, sess *session.Session, config WatcherConfig) (*Watcher, error) {
	local, ok := loader.Source().(*LocalSource)
	if !ok {
		return nil, fmt.Errorf("cannot watch %s: only local sources support watching", loader.Source())
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = 250 * time.Millisecond
	}

	return &Watcher{
		source:  local,
		loader:  loader,
		session: sess,
		config:  config,
		watcher: fsw,
		logger:  logger,
		done:    make(chan struct{}),
	}, nil
}

// Start adds watches and processes events until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	root := w.source.Root()
	info, err := os.Stat(root)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", root, err)
	}

	if info.IsDir() {
		err = w.addWatchesRecursive(root)
	} else {
		err = w.watcher.Add(filepath.Dir(root))
	}
	if err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Source watcher started", "root", root, "debounce", w.config.DebounceDelay)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		close(w.done)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(filepath.Base(path), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory", "path", event.Name, "error", err)
			}
			return
		}
	}
	if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
		return
	}
	if !w.source.Matches(event.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()

	w.logger.Debug("Ontology change detected", "path", event.Name, "op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if !w.pending {
		w.pendingMu.Unlock()
		return
	}
	w.pending = false
	w.pendingMu.Unlock()

	snapshot, err := w.loader.Reload(ctx, w.session)
	if err != nil {
		w.logger.Error("Reload failed, keeping previous snapshot", "source", w.source.String(), "error", err)
	}
	if w.config.OnReload != nil {
		w.config.OnReload(snapshot, err)
	}
}
