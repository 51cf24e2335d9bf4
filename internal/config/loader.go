package config

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long the file must be quiet before a reload.
const DefaultDebounce = 100 * time.Millisecond

// Loader reads one configuration file and, once Watch is called, reloads
// it whenever it changes on disk. A reload that fails schema or range
// validation is reported on Errors and the previous configuration stays
// in effect.
type Loader struct {
	path     string
	debounce time.Duration

	mu        sync.RWMutex
	current   *Config
	listeners []func(*Config)

	watcher *fsnotify.Watcher
	errs    chan error
	stop    chan struct{}
	stopped sync.Once
	loop    sync.WaitGroup
}

// NewLoader returns a loader for path. Nothing is read until Load.
func NewLoader(path string) *Loader {
	return &Loader{
		path:     path,
		debounce: DefaultDebounce,
		errs:     make(chan error, 1),
		stop:     make(chan struct{}),
	}
}

// Path returns the configuration file path.
func (l *Loader) Path() string { return l.path }

// Load reads the file and makes it current. A missing file yields the
// defaults with environment overrides applied.
func (l *Loader) Load() (*Config, error) {
	cfg, err := l.read()
	if err != nil {
		return nil, err
	}
	l.mu.Lock()
	l.current = cfg
	l.mu.Unlock()
	return cfg, nil
}

// read runs the full pipeline: schema check of the raw document, decode
// over defaults, environment overrides, range validation.
func (l *Loader) read() (*Config, error) {
	data, err := os.ReadFile(l.path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("read config: %w", err)
	default:
		if err := ValidateDocument(data, filepath.Ext(l.path)); err != nil {
			return nil, fmt.Errorf("validate document: %w", err)
		}
	}

	cfg, err := loadConfigFromFile(l.path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validation failed: %w", err)
	}
	return cfg, nil
}

// Config returns the current configuration, nil before Load.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers fn to run after each successful reload. Callbacks run
// on the watch goroutine, outside the loader's lock.
func (l *Loader) OnChange(fn func(*Config)) {
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	l.mu.Unlock()
}

// Errors delivers reload and watcher failures. Only the latest unread
// error is kept.
func (l *Loader) Errors() <-chan error { return l.errs }

// Watch starts reloading on change. The parent directory is watched, not
// the file, so editors that save by rename are seen too.
func (l *Loader) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch directory: %w", err)
	}
	l.watcher = w
	l.loop.Go(l.watch)
	return nil
}

func (l *Loader) watch() {
	name := filepath.Base(l.path)
	quiet := time.NewTimer(l.debounce)
	quiet.Stop()
	defer quiet.Stop()

	for {
		select {
		case <-l.stop:
			return
		case ev, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) == name && (ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
				quiet.Reset(l.debounce)
			}
		case <-quiet.C:
			l.reload()
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.report(err)
		}
	}
}

func (l *Loader) reload() {
	cfg, err := l.read()
	if err != nil {
		l.report(fmt.Errorf("reload config: %w", err))
		return
	}

	l.mu.Lock()
	l.current = cfg
	listeners := slices.Clone(l.listeners)
	l.mu.Unlock()

	for _, fn := range listeners {
		fn(cfg)
	}
}

// report replaces any unread error with err.
func (l *Loader) report(err error) {
	for {
		select {
		case l.errs <- err:
			return
		default:
		}
		select {
		case <-l.errs:
		default:
		}
	}
}

// Close stops watching and waits for the watch goroutine. It is safe to
// call more than once.
func (l *Loader) Close() error {
	var err error
	l.stopped.Do(func() {
		close(l.stop)
		if l.watcher != nil {
			err = l.watcher.Close()
		}
		l.loop.Wait()
	})
	return err
}

// LoadOrCreate loads path, first writing the defaults there when the file
// does not exist. The boolean reports whether the file was created.
func LoadOrCreate(path string) (*Config, bool, error) {
	if path == "" {
		path = ConfigPath()
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()
		if err := SaveConfig(cfg, path); err != nil {
			return nil, false, fmt.Errorf("create default config: %w", err)
		}
		return cfg, true, nil
	}
	cfg, err := NewLoader(path).Load()
	return cfg, false, err
}
