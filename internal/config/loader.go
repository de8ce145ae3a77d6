package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"vnkey/internal/session"
)

// Change is one accepted configuration: the file as loaded and the
// session options derived from it. Previous is nil for the first load.
type Change struct {
	Config   *Config
	Previous *Config
	Options  session.Options
}

// DictionariesMoved reports whether any dictionary path differs from the
// previous configuration.
func (c Change) DictionariesMoved() bool {
	if c.Previous == nil {
		return true
	}
	a, b := c.Previous.Dictionaries, c.Config.Dictionaries
	return a.English != b.English || a.Vietnamese != b.Vietnamese || a.Custom != b.Custom
}

// MacrosChanged reports whether the macro section differs.
func (c Change) MacrosChanged() bool {
	if c.Previous == nil {
		return true
	}
	a, b := c.Previous.Macros, c.Config.Macros
	return a.Enabled != b.Enabled || !maps.Equal(a.Entries, b.Entries)
}

// Loader reads one config file and keeps the last configuration that
// parsed, validated and produced usable session options. With Watch it
// re-reads the file when it is written and hands each accepted Change to
// the registered handlers; rejected files go to the error handler and
// leave the current configuration in place.
type Loader struct {
	path     string
	debounce time.Duration

	mu       sync.RWMutex
	current  *Change
	handlers []func(Change)
	failed   func(error)

	watcher *fsnotify.Watcher
	stop    chan struct{}
	once    sync.Once
}

// NewLoader returns a loader for path, or ConfigPath when path is empty.
func NewLoader(path string) *Loader {
	if path == "" {
		path = ConfigPath()
	}
	return &Loader{
		path:     path,
		debounce: 100 * time.Millisecond,
		stop:     make(chan struct{}),
	}
}

// Path returns the config file.
func (l *Loader) Path() string { return l.path }

// Load reads the file. A missing file yields the defaults.
func (l *Loader) Load() (*Config, error) {
	ch, err := l.accept()
	if err != nil {
		return nil, err
	}
	return ch.Config, nil
}

// LoadOrCreate loads the file, first writing the defaults to it when it
// does not exist yet. created reports whether the file was written.
func (l *Loader) LoadOrCreate() (cfg *Config, created bool, err error) {
	if _, statErr := os.Stat(l.path); errors.Is(statErr, os.ErrNotExist) {
		if err := SaveConfig(DefaultConfig(), l.path); err != nil {
			return nil, false, fmt.Errorf("create default config: %w", err)
		}
		created = true
	}
	cfg, err = l.Load()
	return cfg, created, err
}

// Config returns the current configuration, nil before Load.
func (l *Loader) Config() *Config {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return nil
	}
	return l.current.Config
}

// Options returns the session options of the current configuration.
func (l *Loader) Options() session.Options {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.current == nil {
		return session.DefaultOptions()
	}
	return l.current.Options
}

// OnChange registers h for every configuration accepted by a reload.
func (l *Loader) OnChange(h func(Change)) {
	l.mu.Lock()
	l.handlers = append(l.handlers, h)
	l.mu.Unlock()
}

// OnError sets the handler for rejected reloads and watch errors.
func (l *Loader) OnError(h func(error)) {
	l.mu.Lock()
	l.failed = h
	l.mu.Unlock()
}

// accept reads, checks and installs the file.
func (l *Loader) accept() (Change, error) {
	cfg, err := readConfig(l.path)
	if err != nil {
		return Change{}, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return Change{}, fmt.Errorf("validation failed: %w", err)
	}
	opts, err := cfg.SessionOptions()
	if err != nil {
		return Change{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	ch := Change{Config: cfg, Options: opts}
	if l.current != nil {
		ch.Previous = l.current.Config
	}
	l.current = &ch
	return ch, nil
}

// Watch follows the config file until Close.
func (l *Loader) Watch() error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	// Editors replace files on save, so watch the directory.
	if err := w.Add(filepath.Dir(l.path)); err != nil {
		w.Close()
		return fmt.Errorf("watch %s: %w", filepath.Dir(l.path), err)
	}
	l.watcher = w
	go l.watch(w)
	return nil
}

func (l *Loader) watch(w *fsnotify.Watcher) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	name := filepath.Base(l.path)

	for {
		select {
		case <-l.stop:
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Base(ev.Name) != name || !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			if timer == nil {
				timer = time.AfterFunc(l.debounce, l.reload)
			} else {
				timer.Reset(l.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			l.fail(err)
		}
	}
}

func (l *Loader) reload() {
	ch, err := l.accept()
	if err != nil {
		l.fail(fmt.Errorf("reload %s: %w", l.path, err))
		return
	}
	l.mu.RLock()
	handlers := append([]func(Change){}, l.handlers...)
	l.mu.RUnlock()
	for _, h := range handlers {
		h(ch)
	}
}

func (l *Loader) fail(err error) {
	l.mu.RLock()
	h := l.failed
	l.mu.RUnlock()
	if h != nil {
		h(err)
	}
}

// Close stops watching. It is safe to call more than once.
func (l *Loader) Close() error {
	var err error
	l.once.Do(func() {
		close(l.stop)
		if l.watcher != nil {
			err = l.watcher.Close()
		}
	})
	return err
}

type decoder func(data []byte, cfg *Config) error

var decoders = map[string]decoder{
	".toml": func(data []byte, cfg *Config) error {
		_, err := toml.Decode(string(data), cfg)
		return err
	},
	".json": func(data []byte, cfg *Config) error { return json.Unmarshal(data, cfg) },
	".yaml": func(data []byte, cfg *Config) error { return yaml.Unmarshal(data, cfg) },
}

func init() { decoders[".yml"] = decoders[".yaml"] }

// readConfig decodes path over the defaults. The extension picks the
// format; files without a known one are tried as TOML, JSON and YAML in
// turn, each attempt starting from fresh defaults.
func readConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultConfig(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	ext := filepath.Ext(path)
	if dec, ok := decoders[ext]; ok {
		cfg := DefaultConfig()
		if err := dec(data, cfg); err != nil {
			return nil, fmt.Errorf("decode %s: %w", ext, err)
		}
		return cfg, nil
	}
	for _, ext := range []string{".toml", ".json", ".yaml"} {
		cfg := DefaultConfig()
		if decoders[ext](data, cfg) == nil {
			return cfg, nil
		}
	}
	return nil, errors.New("parse config: not TOML, JSON or YAML")
}
