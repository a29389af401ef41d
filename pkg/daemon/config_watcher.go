package daemon

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/grovetools/casemgmt/config"
	"github.com/grovetools/casemgmt/logging"
	"github.com/sirupsen/logrus"
)

// ConfigWatcher reloads the daemon's config file when it changes on disk.
type ConfigWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	target   string
	debounce time.Duration
	logger   *logrus.Entry

	onReload func(file string)
	onChange func(prev, next *config.Config)

	mu      sync.Mutex
	current *config.Config
	timer   *time.Timer
	closed  bool
}

// NewConfigWatcher watches path, which must be the file current was loaded
// from. Bursts of writes closer than debounceMs collapse into one reload,
// run once the file has been quiet for that long.
//
// onReload receives the base name of the file after every successful reload.
// onChange receives the previous and new configuration. Either may be nil.
func NewConfigWatcher(path string, current *config.Config, debounceMs int, onReload func(string), onChange func(prev, next *config.Config)) (*ConfigWatcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	logger := logging.NewLogger("config-watcher")

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return nil, err
	}

	// fsnotify doesn't follow symlinks, so watch the target's directory too.
	target := abs
	if info, err := os.Lstat(abs); err == nil && info.Mode()&os.ModeSymlink != 0 {
		resolved, err := filepath.EvalSymlinks(abs)
		if err != nil {
			logger.WithError(err).Warnf("Failed to resolve symlink %s", abs)
		} else {
			target = resolved
			if filepath.Dir(resolved) != filepath.Dir(abs) {
				if err := watcher.Add(filepath.Dir(resolved)); err != nil {
					logger.WithError(err).Warnf("Failed to watch symlink target dir %s", filepath.Dir(resolved))
				} else {
					logger.Debugf("Watching symlink target directory: %s", filepath.Dir(resolved))
				}
			}
		}
	}

	if debounceMs <= 0 {
		debounceMs = 100
	}

	return &ConfigWatcher{
		watcher:  watcher,
		path:     abs,
		target:   target,
		debounce: time.Duration(debounceMs) * time.Millisecond,
		logger:   logger,
		onReload: onReload,
		onChange: onChange,
		current:  current,
	}, nil
}

// Path returns the watched config file.
func (w *ConfigWatcher) Path() string {
	return w.path
}

// Current returns the most recently loaded configuration.
func (w *ConfigWatcher) Current() *config.Config {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Start begins watching for config changes. It blocks until the context is cancelled.
func (w *ConfigWatcher) Start(ctx context.Context) {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.logger.Debugf("fsnotify event: %s op=%v", event.Name, event.Op)

			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if !w.matches(event.Name) {
				continue
			}
			w.schedule()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Errorf("Watcher error: %v", err)
		case <-ctx.Done():
			w.Close()
			return
		}
	}
}

// matches reports whether name is the config file, its symlink target or
// one of its override files.
func (w *ConfigWatcher) matches(name string) bool {
	clean := filepath.Clean(name)
	return clean == w.path || clean == w.target || config.IsOverrideFor(w.path, clean)
}

// schedule (re)arms the reload timer.
func (w *ConfigWatcher) schedule() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.reload)
}

// reload re-reads the file. A file that no longer parses is logged and the
// previous configuration stays in effect.
func (w *ConfigWatcher) reload() {
	next, err := config.Load(w.path)
	if err == nil {
		err = next.Validate()
	}
	if err != nil {
		w.logger.WithError(err).Warnf("Ignoring invalid config change in %s", filepath.Base(w.path))
		return
	}

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	prev := w.current
	w.current = next
	w.mu.Unlock()

	w.logger.Infof("Config changed: %s", filepath.Base(w.path))

	if w.onChange != nil {
		w.onChange(prev, next)
	}
	if w.onReload != nil {
		w.onReload(filepath.Base(w.path))
	}
}

// Close stops the watcher and releases resources.
func (w *ConfigWatcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
