package repository

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
)

// WatcherConfig configures the fixture watcher.
type WatcherConfig struct {
	// Patterns are the fixture globs to reload.
	Patterns []string

	// DebounceDelay is how long to wait for more changes before reloading.
	DebounceDelay time.Duration

	// Logger for logging events
	Logger *slog.Logger
}

// ReloadEvent reports the outcome of one fixture reload.
type ReloadEvent struct {
	Entities      int
	Relationships int

	// Error is set when the fixtures could not be loaded. The store keeps
	// its previous content in that case.
	Error error
}

// Watcher reloads fixture files into a Memory store whenever they change.
type Watcher struct {
	config  WatcherConfig
	store   *Memory
	watcher *fsnotify.Watcher
	logger  *slog.Logger

	pendingMu sync.Mutex
	pending   bool

	events chan ReloadEvent
}

// NewWatcher creates a fixture watcher feeding store.
func NewWatcher(config WatcherConfig, store *Memory) (*Watcher, error) {
	if len(config.Patterns) == 0 {
		return nil, fmt.Errorf("no fixture patterns to watch")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if config.DebounceDelay == 0 {
		config.DebounceDelay = 100 * time.Millisecond
	}

	return &Watcher{
		config:  config,
		store:   store,
		watcher: fsw,
		logger:  logger,
		events:  make(chan ReloadEvent, 16),
	}, nil
}

// Events returns the channel of reload events.
func (w *Watcher) Events() <-chan ReloadEvent {
	return w.events
}

// Load performs a reload immediately.
func (w *Watcher) Load() ReloadEvent {
	event := ReloadEvent{}
	records, err := LoadFixtures(w.config.Patterns)
	if err == nil {
		err = w.store.Replace(records)
	}
	if err != nil {
		event.Error = err
		return event
	}
	event.Entities, event.Relationships = w.store.Len()
	return event
}

// Start adds watches below the base directory of every pattern and begins
// processing changes.
func (w *Watcher) Start(ctx context.Context) error {
	for _, pattern := range w.config.Patterns {
		base, _ := doublestar.SplitPattern(filepath.ToSlash(pattern))
		if err := w.addWatchesRecursive(filepath.FromSlash(base)); err != nil {
			return err
		}
	}

	go w.processEvents(ctx)

	w.logger.Info("Fixture watcher started",
		"patterns", strings.Join(w.config.Patterns, ","),
		"debounce", w.config.DebounceDelay)
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("Failed to watch directory",
				"path", path,
				"error", err)
		} else {
			w.logger.Debug("Watching directory", "path", path)
		}
		return nil
	})
}

func (w *Watcher) processEvents(ctx context.Context) {
	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()
	defer close(w.events)

	for {
		select {
		case <-ctx.Done():
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
			w.flushPending()
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	if event.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.watcher.Add(event.Name); err != nil {
				w.logger.Warn("Failed to watch new directory",
					"path", event.Name,
					"error", err)
			}
			return
		}
	}
	if !w.relevant(event.Name) {
		return
	}

	w.pendingMu.Lock()
	w.pending = true
	w.pendingMu.Unlock()

	w.logger.Debug("Fixture change detected",
		"path", event.Name,
		"op", event.Op.String())
}

// relevant reports whether path matches one of the patterns.
func (w *Watcher) relevant(path string) bool {
	for _, pattern := range w.config.Patterns {
		if ok, _ := doublestar.PathMatch(pattern, path); ok {
			return true
		}
	}
	return false
}

func (w *Watcher) flushPending() {
	w.pendingMu.Lock()
	if !w.pending {
		w.pendingMu.Unlock()
		return
	}
	w.pending = false
	w.pendingMu.Unlock()

	event := w.Load()
	if event.Error != nil {
		w.logger.Warn("Fixture reload failed, keeping previous records", "error", event.Error)
	} else {
		w.logger.Info("Fixtures reloaded",
			"entities", event.Entities,
			"relationships", event.Relationships)
	}

	select {
	case w.events <- event:
	default:
		w.logger.Warn("Event channel full, dropping reload event")
	}
}
