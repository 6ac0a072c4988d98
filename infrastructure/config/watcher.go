package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ConfigWatcher watches for configuration changes and reloads in development.
// Production deployments get configuration from the environment at startup and
// never reload.
type ConfigWatcher struct {
	mu        sync.RWMutex
	config    *Config
	watcher   *fsnotify.Watcher
	logger    *zap.Logger
	callbacks []func(*Config)
	stopCh    chan struct{}
	stopped   bool
}

// NewConfigWatcher creates a watcher seeded with the initial configuration.
// Watching only activates in development mode.
func NewConfigWatcher(initial *Config, logger *zap.Logger) (*ConfigWatcher, error) {
	cw := &ConfigWatcher{
		config: initial,
		logger: logger,
		stopCh: make(chan struct{}),
	}

	if !initial.IsDevelopment() {
		return cw, nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	cw.watcher = watcher

	if err := cw.watchConfigFiles(); err != nil {
		watcher.Close()
		return nil, err
	}

	go cw.watchLoop()

	return cw, nil
}

// GetConfig returns the current configuration
func (cw *ConfigWatcher) GetConfig() *Config {
	cw.mu.RLock()
	defer cw.mu.RUnlock()
	return cw.config
}

// OnChange registers a callback invoked after each successful reload
func (cw *ConfigWatcher) OnChange(fn func(*Config)) {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	cw.callbacks = append(cw.callbacks, fn)
}

// Stop shuts down the watcher
func (cw *ConfigWatcher) Stop() {
	cw.mu.Lock()
	defer cw.mu.Unlock()

	if cw.stopped {
		return
	}
	cw.stopped = true
	close(cw.stopCh)

	if cw.watcher != nil {
		cw.watcher.Close()
	}
}

func (cw *ConfigWatcher) watchConfigFiles() error {
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "."
	}

	envFile := fmt.Sprintf(".env.%s", cw.config.Environment)

	return filepath.Walk(configDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			// Don't descend into dependency or VCS directories
			name := info.Name()
			if name == "node_modules" || name == ".git" || name == "vendor" {
				return filepath.SkipDir
			}
			return nil
		}

		name := info.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if ext == ".yaml" || ext == ".yml" || ext == ".json" || name == envFile || name == ".env" {
			if err := cw.watcher.Add(path); err != nil {
				cw.logger.Warn("failed to watch config file",
					zap.String("path", path),
					zap.Error(err))
			}
		}
		return nil
	})
}

func (cw *ConfigWatcher) watchLoop() {
	// Debounce rapid successive writes from editors
	var debounce *time.Timer

	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(500*time.Millisecond, func() {
				cw.reloadConfig()
			})

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("config watcher error", zap.Error(err))

		case <-cw.stopCh:
			if debounce != nil {
				debounce.Stop()
			}
			return
		}
	}
}

func (cw *ConfigWatcher) reloadConfig() {
	newConfig, err := LoadConfig()
	if err != nil {
		cw.logger.Warn("config reload failed, keeping previous configuration",
			zap.Error(err))
		return
	}

	cw.mu.Lock()
	if configsEqual(cw.config, newConfig) {
		cw.mu.Unlock()
		return
	}
	cw.config = newConfig
	callbacks := make([]func(*Config), len(cw.callbacks))
	copy(callbacks, cw.callbacks)
	cw.mu.Unlock()

	cw.logger.Info("configuration reloaded")

	for _, fn := range callbacks {
		fn(newConfig)
	}
}

func configsEqual(a, b *Config) bool {
	return *a == *b
}
