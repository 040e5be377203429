package engine

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/pelletier/go-toml/v2"
	"github.com/prismengine/prism/engine/core"
)

type ApplicationConfig struct {
	// The application name used in windowing, if applicable.
	Name string `toml:"name"`
	// Window starting position x axis, if applicable.
	StartPosX uint32 `toml:"start_pos_x"`
	// Window starting position y axis, if applicable.
	StartPosY uint32 `toml:"start_pos_y"`
	// Window starting width, if applicable.
	StartWidth uint32 `toml:"start_width"`
	// Window starting height, if applicable.
	StartHeight uint32 `toml:"start_height"`
	// One of debug, info, warn, error, fatal.
	LogLevel string `toml:"log_level"`
}

func DefaultConfig() *ApplicationConfig {
	return &ApplicationConfig{
		Name:        "Prism Application",
		StartPosX:   100,
		StartPosY:   100,
		StartWidth:  1280,
		StartHeight: 720,
		LogLevel:    "info",
	}
}

// LoadConfig reads a TOML application config. Fields absent from the file
// keep their defaults.
func LoadConfig(path string) (*ApplicationConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if config.StartWidth == 0 || config.StartHeight == 0 {
		return nil, fmt.Errorf("config %s declares a zero-sized window", path)
	}
	return config, nil
}

// ConfigWatcher watches the application config file and applies the log
// level on change, so verbosity can be adjusted without a restart.
type ConfigWatcher struct {
	path    string
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func WatchConfig(path string) (*ConfigWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory; editors replace files on save which drops a
	// watch held on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	cw := &ConfigWatcher{
		path:    path,
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go cw.run()
	return cw, nil
}

func (cw *ConfigWatcher) run() {
	for {
		select {
		case event, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(cw.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			config, err := LoadConfig(cw.path)
			if err != nil {
				core.LogWarn("config reload failed: %s", err)
				continue
			}
			if err := core.SetLogLevel(config.LogLevel); err != nil {
				core.LogWarn("config reload: %s", err)
				continue
			}
			core.LogInfo("config reloaded, log level is now '%s'", config.LogLevel)
		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("config watcher error: %s", err)
		case <-cw.done:
			return
		}
	}
}

func (cw *ConfigWatcher) Close() error {
	close(cw.done)
	return cw.watcher.Close()
}
