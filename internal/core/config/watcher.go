package config

import (
	"os"
	"path/filepath"

	"github.com/bytedance/sonic"
	"github.com/fsnotify/fsnotify"
	"github.com/wrenb/go-stream-lens/internal/util"
)

// FileWatcher watches a session config file and emits the decoded config
// whenever the file changes. The watch command stages each emitted config as
// a draft and commits it, so edits to the file retune a running session.
type FileWatcher struct {
	watcher *fsnotify.Watcher
	path    string
	events  chan SessionConfig
	done    chan struct{}
}

// LoadFile reads and decodes a session config file
func LoadFile(path string) (SessionConfig, error) {
	var cfg SessionConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// NewFileWatcher starts watching the given config file
func NewFileWatcher(path string) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	// Watch the directory: editors replace files on save, which drops the
	// watch if the file itself is registered.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	fw := &FileWatcher{
		watcher: watcher,
		path:    path,
		events:  make(chan SessionConfig, 8),
		done:    make(chan struct{}),
	}

	go fw.processEvents()

	return fw, nil
}

// Events returns the channel of decoded configs
func (fw *FileWatcher) Events() <-chan SessionConfig {
	return fw.events
}

func (fw *FileWatcher) processEvents() {
	for {
		select {
		case <-fw.done:
			return

		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(fw.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := LoadFile(fw.path)
			if err != nil {
				util.LogWarnf("Ignoring unreadable config file %s: %v", fw.path, err)
				continue
			}
			select {
			case fw.events <- cfg:
			default:
				util.LogDebug("Dropping config file event, channel full")
			}

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			util.LogErrorf("Config file watch error: %v", err)
		}
	}
}

// Close stops the watcher
func (fw *FileWatcher) Close() error {
	close(fw.done)
	return fw.watcher.Close()
}
