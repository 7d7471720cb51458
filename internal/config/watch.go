package config

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceWindow = 100 * time.Millisecond

// Watcher reloads the config file when it changes on disk. Valid reloads are
// delivered on Configs; load and validation failures on Errors, leaving the
// previous config in effect.
type Watcher struct {
	Configs chan *Config
	Errors  chan error

	path    string
	watcher *fsnotify.Watcher
	closeCh chan struct{}
	once    sync.Once
}

// Watch observes the directory containing path. Watching the directory
// rather than the file survives the rename-and-replace pattern editors use.
func Watch(path string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		_ = fsw.Close()
		return nil, err
	}

	w := &Watcher{
		Configs: make(chan *Config, 1),
		Errors:  make(chan error, 1),
		path:    path,
		watcher: fsw,
		closeCh: make(chan struct{}),
	}
	go w.run()
	return w, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) run() {
	var lastReload time.Time
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if filepath.Clean(ev.Name) != filepath.Clean(w.path) {
				continue
			}
			now := time.Now()
			if now.Sub(lastReload) < debounceWindow {
				continue
			}
			lastReload = now

			cfg, err := Load(w.path)
			if err != nil {
				select {
				case w.Errors <- err:
				default:
				}
				continue
			}
			select {
			case w.Configs <- cfg:
			default:
				// Drop if the consumer is behind; the next change wins anyway.
			}
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
		case <-w.closeCh:
			return
		}
	}
}
