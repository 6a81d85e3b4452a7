package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/message"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/metrics"
	"github.com/gyaneshwarpardhi/sfdc-webhook/internal/parser"
)

// Defaults applied to fields left empty in the file.
const (
	DefaultAddr         = ":8080"
	DefaultMaxBodyBytes = 1 << 20
	DefaultTimeoutMs    = 3000
	DefaultTTLSeconds   = 300
)

// Loader reads a YAML settings file and watches it for changes.
type Loader struct {
	path     string
	mu       sync.RWMutex
	current  *Settings
	onChange []func(*Settings)
	watcher  *fsnotify.Watcher
}

// NewLoader creates a Loader and performs the initial load. Settings that
// fail Validate are rejected.
func NewLoader(path string) (*Loader, error) {
	l := &Loader{path: path}
	cfg, err := l.load()
	if err != nil {
		return nil, err
	}
	l.current = cfg
	return l, nil
}

// Path returns the watched file.
func (l *Loader) Path() string { return l.path }

// Config returns the last valid settings.
func (l *Loader) Config() *Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.current
}

// OnChange registers a callback invoked whenever the settings reload.
func (l *Loader) OnChange(fn func(*Settings)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.onChange = append(l.onChange, fn)
}

// Watch starts a background goroutine that hot-reloads the settings on file changes.
// Call the returned stop function to clean up.
func (l *Loader) Watch() (stop func(), err error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(l.path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", l.path, err)
	}
	l.watcher = w

	done := make(chan struct{})
	go func() {
		defer w.Close()
		for {
			select {
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
					if _, err := l.Reload(); err != nil {
						slog.Warn("config reload failed, keeping previous settings", "path", l.path, "err", err)
					}
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "err", err)
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }, nil
}

// Reload forces an immediate re-read of the settings file. Invalid settings
// leave the current snapshot in place and no callback runs. Otherwise
// callbacks run synchronously, in registration order, after the new
// snapshot is stored.
func (l *Loader) Reload() (*Settings, error) {
	cfg, err := l.load()
	if err != nil {
		if errors.Is(err, ErrInvalid) {
			metrics.ConfigReloads.WithLabelValues("invalid").Inc()
		} else {
			metrics.ConfigReloads.WithLabelValues("error").Inc()
		}
		return nil, err
	}
	metrics.ConfigReloads.WithLabelValues("applied").Inc()
	l.mu.Lock()
	l.current = cfg
	callbacks := make([]func(*Settings), len(l.onChange))
	copy(callbacks, l.onChange)
	l.mu.Unlock()
	for _, fn := range callbacks {
		fn(cfg)
	}
	return cfg, nil
}

func (l *Loader) load() (*Settings, error) {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", l.path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", l.path, err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config %s: %w", l.path, err)
	}
	return cfg, nil
}

// Parse decodes YAML settings and applies defaults.
func Parse(data []byte) (*Settings, error) {
	var cfg Settings
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	ApplyDefaults(&cfg)
	return &cfg, nil
}

// ApplyDefaults fills every zero-valued tunable.
func ApplyDefaults(cfg *Settings) {
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultAddr
	}
	if cfg.Server.MaxBodyBytes == 0 {
		cfg.Server.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if cfg.Integration.Name == "" {
		cfg.Integration.Name = parser.DefaultIntegrationName
	}
	if cfg.Integration.DocumentVersion == "" {
		cfg.Integration.DocumentVersion = string(message.V1)
	}
	if cfg.Identity.TimeoutMs == 0 {
		cfg.Identity.TimeoutMs = DefaultTimeoutMs
	}
	if cfg.Identity.Cache.TTLSeconds == 0 {
		cfg.Identity.Cache.TTLSeconds = DefaultTTLSeconds
	}
}
