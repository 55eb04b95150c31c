package prompts

import (
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"resumelens/internal/errors"
)

// Watcher watches a prompt template directory and reloads the registry when
// override files change. Events are debounced so editors that write in
// multiple steps trigger a single reload.
type Watcher struct {
	mu sync.Mutex

	registry      *Registry
	dir           string
	debounceDelay time.Duration
	debounceTimer *time.Timer

	fsWatcher  *fsnotify.Watcher
	stopChan   chan struct{}
	reloadChan chan struct{}

	logger  *errors.Logger
	running bool
}

// NewWatcher creates a watcher for the registry's template directory.
func NewWatcher(registry *Registry, debounceDelay time.Duration, logger *errors.Logger) (*Watcher, error) {
	if registry.dir == "" {
		return nil, fmt.Errorf("prompt registry has no template directory to watch")
	}
	if debounceDelay == 0 {
		debounceDelay = time.Second
	}

	return &Watcher{
		registry:      registry,
		dir:           registry.dir,
		debounceDelay: debounceDelay,
		stopChan:      make(chan struct{}),
		reloadChan:    make(chan struct{}, 1),
		logger:        logger,
	}, nil
}

// Start begins watching the template directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.running {
		return fmt.Errorf("prompt watcher is already running")
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	// Watching the directory rather than individual files catches atomic
	// writes (rename operations) and files created after startup.
	if err := fsWatcher.Add(w.dir); err != nil {
		if closeErr := fsWatcher.Close(); closeErr != nil && w.logger != nil {
			w.logger.LogError(closeErr, "Failed to close file watcher during cleanup")
		}
		return fmt.Errorf("failed to watch prompt directory %s: %w", w.dir, err)
	}

	w.fsWatcher = fsWatcher
	w.running = true
	go w.watchLoop()

	if w.logger != nil {
		w.logger.Info("Prompt template watcher started",
			"directory", w.dir,
			"debounce_delay", w.debounceDelay)
	}
	return nil
}

// Stop stops the watcher.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopChan)
	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	if err := w.fsWatcher.Close(); err != nil {
		if w.logger != nil {
			w.logger.LogError(err, "Failed to close file system watcher")
		}
		return err
	}

	w.running = false
	if w.logger != nil {
		w.logger.Info("Prompt template watcher stopped")
	}
	return nil
}

func (w *Watcher) watchLoop() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if w.shouldProcessEvent(event) {
				w.scheduleReload()
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			if w.logger != nil {
				w.logger.LogError(err, "Prompt watcher error")
			}

		case <-w.reloadChan:
			if err := w.registry.Reload(); err != nil {
				if w.logger != nil {
					w.logger.LogError(err, "Prompt template reload failed, keeping previous templates")
				}
			} else if w.logger != nil {
				w.logger.Info("Prompt templates reloaded", "directory", w.dir)
			}

		case <-w.stopChan:
			return
		}
	}
}

// shouldProcessEvent filters events down to override-file writes.
func (w *Watcher) shouldProcessEvent(event fsnotify.Event) bool {
	name := filepath.Base(event.Name)
	if !strings.HasSuffix(name, "_system.txt") && !strings.HasSuffix(name, "_user.txt") {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) != 0
}

func (w *Watcher) scheduleReload() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debounceTimer != nil {
		w.debounceTimer.Stop()
	}
	w.debounceTimer = time.AfterFunc(w.debounceDelay, func() {
		select {
		case w.reloadChan <- struct{}{}:
		default:
		}
	})
}

// IsRunning returns whether the watcher is currently running.
func (w *Watcher) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
