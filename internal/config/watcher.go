package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
)

// Watcher reloads the configuration file on change and notifies a callback
// with the freshly parsed configuration. Reloads are debounced to absorb
// editors that write in several steps.
type Watcher struct {
	path     string
	onReload func(*Config)
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewWatcher creates a watcher for path. onReload runs on a background
// goroutine for every successful reload.
func NewWatcher(path string, onReload func(*Config)) *Watcher {
	return &Watcher{path: path, onReload: onReload, stopCh: make(chan struct{})}
}

// Start begins watching. It returns an error only when the watcher cannot
// be created; a file that does not exist yet is watched via its directory.
func (w *Watcher) Start() error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	if err := fw.Add(w.path); err != nil {
		log.WithError(err).WithField("path", w.path).Warn("failed to watch config file")
	}
	// Watch the directory too to catch atomic writes (rename operations)
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		log.WithError(err).WithField("dir", filepath.Dir(w.path)).Warn("failed to watch config directory")
	}

	log.WithField("path", w.path).Info("config watcher started")

	go func() {
		defer fw.Close()

		var debounce *time.Timer
		const debounceDuration = 100 * time.Millisecond

		for {
			select {
			case event, ok := <-fw.Events:
				if !ok {
					return
				}
				if event.Name != w.path {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDuration, w.reload)

			case err, ok := <-fw.Errors:
				if !ok {
					return
				}
				log.WithError(err).Warn("config watcher error")

			case <-w.stopCh:
				if debounce != nil {
					debounce.Stop()
				}
				return
			}
		}
	}()
	return nil
}

// Stop terminates the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}

func (w *Watcher) reload() {
	cfg, err := LoadWithFile(w.path)
	if err != nil {
		log.WithError(err).Warn("config reload failed, keeping previous configuration")
		return
	}
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Warn("reloaded config invalid, keeping previous configuration")
		return
	}
	log.WithField("path", w.path).Info("configuration reloaded")
	if w.onReload != nil {
		w.onReload(cfg)
	}
}
