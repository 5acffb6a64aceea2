package config

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// ReloadFunc is called with the new config after a successful reload
type ReloadFunc func(*Config)

// Watcher watches a config file and reloads it when it changes. A file that
// fails to load or validate is logged and the previous config stays active.
type Watcher struct {
	path     string
	watcher  *fsnotify.Watcher
	logger   *log.Entry
	mu       sync.RWMutex
	config   *Config
	handlers []ReloadFunc
	done     chan struct{}
	stopOnce sync.Once
}

// NewWatcher loads path and prepares a watcher for it
func NewWatcher(path string) (*Watcher, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create config watcher: %w", err)
	}

	// Watch the directory so editors that save via rename are still seen
	if err := w.Add(filepath.Dir(path)); err != nil {
		w.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}

	return &Watcher{
		path:    filepath.Clean(path),
		watcher: w,
		logger:  log.WithField("component", "config"),
		config:  cfg,
		done:    make(chan struct{}),
	}, nil
}

func (w *Watcher) Start() {
	go w.watch()
}

// Stop stops the watcher. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		w.watcher.Close()
	})
}

// OnReload registers a handler to be called when config is reloaded
func (w *Watcher) OnReload(handler ReloadFunc) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.handlers = append(w.handlers, handler)
}

// Get returns the current config
func (w *Watcher) Get() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

func (w *Watcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
				w.reload()
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.WithError(err).Warn("Config watcher error")
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.logger.WithError(err).Error("Failed to reload config, keeping the previous one")
		return
	}

	w.mu.Lock()
	w.config = cfg
	handlers := make([]ReloadFunc, len(w.handlers))
	copy(handlers, w.handlers)
	w.mu.Unlock()

	w.logger.WithFields(log.Fields{
		"path":    w.path,
		"buttons": len(cfg.Buttons),
	}).Info("Config reloaded")

	for _, handler := range handlers {
		handler(cfg)
	}
}
