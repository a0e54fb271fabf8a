package assets

import (
	"fmt"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/spaghettifunk/prism/engine/core"
)

// Watcher reports changes to a single file. It watches the parent directory so editors
// that replace the file on save are still seen.
type Watcher struct {
	path     string
	fsnotify *fsnotify.Watcher
	reloads  chan string
	done     chan struct{}
	wg       sync.WaitGroup
	once     sync.Once
}

func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatch.Add(filepath.Dir(abs)); err != nil {
		fsWatch.Close()
		return nil, fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}
	return &Watcher{
		path:     abs,
		fsnotify: fsWatch,
		// one pending reload is enough, later changes coalesce into it
		reloads: make(chan string, 1),
		done:    make(chan struct{}),
	}, nil
}

// Start runs the event loop in its own goroutine.
func (w *Watcher) Start() {
	w.wg.Add(1)
	go w.start()
}

// Reloads delivers the watched path each time the file is written or created.
func (w *Watcher) Reloads() <-chan string {
	return w.reloads
}

func (w *Watcher) Path() string {
	return w.path
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		err = w.fsnotify.Close()
		w.wg.Wait()
	})
	return err
}

func (w *Watcher) start() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.fsnotify.Events:
			if !ok {
				return
			}
			if filepath.Clean(e.Name) != w.path {
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			core.LogDebug("scene file changed: %s", e)
			select {
			case w.reloads <- w.path:
			default:
			}

		case err, ok := <-w.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-w.done:
			return
		}
	}
}
