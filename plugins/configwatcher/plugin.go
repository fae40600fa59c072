// Package configwatcher reloads the log level of a running framechat client
// when its TOML configuration file changes on disk.
package configwatcher

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	toml "github.com/pelletier/go-toml/v2"

	"github.com/bft-labs/framechat/pkg/framechat"
	"github.com/bft-labs/framechat/pkg/log"
)

// Error codes for config file issues.
const (
	ErrCodeFileNotFound     = "FILE_NOT_FOUND"
	ErrCodePermissionDenied = "PERMISSION_DENIED"
	ErrCodeReadError        = "READ_ERROR"
	ErrCodeParseError       = "PARSE_ERROR"
)

// Plugin watches one config file and applies its log_level on change.
type Plugin struct {
	mu sync.Mutex

	// Configuration
	path          string
	debounceDelay time.Duration
	setLevel      func(level string) error

	// Runtime state
	logger   framechat.Logger
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	debounce *time.Timer
	applied  string
}

// Config holds configuration options for the config watcher plugin.
type Config struct {
	// Path is the file to watch. Empty means the client's ConfigPath.
	Path string

	// DebounceDelay is the delay to wait after a file change before reloading.
	// Default: 100 milliseconds
	DebounceDelay time.Duration

	// SetLevel applies a new log level. Required; the plugin stays idle
	// without it.
	SetLevel func(level string) error
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		DebounceDelay: 100 * time.Millisecond,
	}
}

// New creates a new config watcher plugin with the given configuration.
func New(cfg Config) *Plugin {
	if cfg.DebounceDelay <= 0 {
		cfg.DebounceDelay = 100 * time.Millisecond
	}

	return &Plugin{
		path:          cfg.Path,
		debounceDelay: cfg.DebounceDelay,
		setLevel:      cfg.SetLevel,
		logger:        log.NoopLogger{},
	}
}

// Name returns the plugin identifier.
func (p *Plugin) Name() string {
	return "configwatcher"
}

// Initialize starts watching the config file's directory.
func (p *Plugin) Initialize(ctx context.Context, cfg framechat.PluginConfig) error {
	p.mu.Lock()
	if p.path == "" {
		p.path = cfg.ConfigPath
	}
	if cfg.Logger != nil {
		p.logger = cfg.Logger
	}
	p.mu.Unlock()

	if p.path == "" || p.setLevel == nil {
		p.logger.Warn("config watcher disabled: no config file or level setter")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config watcher: %w", err)
	}
	// Watching the directory survives editors that replace the file.
	if err := watcher.Add(filepath.Dir(p.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("config watcher: watch %s: %w", filepath.Dir(p.path), err)
	}

	watchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	p.logger.Info("config watcher plugin initialized", log.String("path", p.path))

	p.wg.Add(1)
	go p.watchLoop(watchCtx, watcher)

	return nil
}

// Shutdown stops the config watcher.
func (p *Plugin) Shutdown(ctx context.Context) error {
	if p.cancel != nil {
		p.cancel()
	}
	p.wg.Wait()

	p.mu.Lock()
	if p.debounce != nil {
		p.debounce.Stop()
	}
	p.mu.Unlock()
	return nil
}

// Applied returns the last log level applied from the file.
func (p *Plugin) Applied() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.applied
}

func (p *Plugin) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer p.wg.Done()
	defer watcher.Close()

	name := filepath.Base(p.path)
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != name {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			p.debounceReload(ctx)

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			p.logger.Error("config watcher: watcher error", log.Err(err))
		}
	}
}

func (p *Plugin) debounceReload(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.debounce != nil {
		p.debounce.Stop()
	}

	p.debounce = time.AfterFunc(p.debounceDelay, func() {
		if ctx.Err() != nil {
			return
		}
		p.reload()
	})
}

// reload reads log_level from the file and applies it if it changed.
func (p *Plugin) reload() {
	var fc struct {
		LogLevel string `toml:"log_level"`
	}

	data, err := os.ReadFile(p.path)
	if err != nil {
		p.logger.Error("config watcher: read failed",
			log.String("code", errorToCode(err)),
			log.Err(err))
		return
	}
	if err := toml.Unmarshal(data, &fc); err != nil {
		p.logger.Error("config watcher: parse failed",
			log.String("code", ErrCodeParseError),
			log.Err(err))
		return
	}
	if fc.LogLevel == "" {
		return
	}

	p.mu.Lock()
	same := fc.LogLevel == p.applied
	p.mu.Unlock()
	if same {
		return
	}

	if err := p.setLevel(fc.LogLevel); err != nil {
		p.logger.Error("config watcher: invalid log level",
			log.String("level", fc.LogLevel),
			log.Err(err))
		return
	}

	p.mu.Lock()
	p.applied = fc.LogLevel
	p.mu.Unlock()
	p.logger.Info("config watcher: log level changed", log.String("level", fc.LogLevel))
}

func errorToCode(err error) string {
	if os.IsNotExist(err) {
		return ErrCodeFileNotFound
	}
	if os.IsPermission(err) {
		return ErrCodePermissionDenied
	}
	if strings.Contains(err.Error(), "permission denied") {
		return ErrCodePermissionDenied
	}
	return ErrCodeReadError
}

// Ensure Plugin implements framechat.Plugin.
var _ framechat.Plugin = (*Plugin)(nil)
