// Package watch re-runs a handler whenever one of a fixed set of files is
// written.
package watch

import (
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce groups bursts of writes to the same file into one run.
const DefaultDebounce = 100 * time.Millisecond

var ErrAlreadyWatching = errors.New("already watching")

// Handler is called with the cleaned path of the file that changed.
type Handler func(path string) error

type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	handler  Handler
	files    map[string]struct{}
	debounce time.Duration

	mu         sync.Mutex
	isWatching bool
	done       chan struct{}
}

// New watches the directories containing files and reports writes to the
// files themselves. Editors that replace a file on save are covered because
// the parent directory is watched.
func New(logger *zap.Logger, files []string, handler Handler) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		watcher:  fw,
		logger:   logger,
		handler:  handler,
		files:    make(map[string]struct{}, len(files)),
		debounce: DefaultDebounce,
	}

	dirs := make(map[string]struct{})
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fw.Close()
			return nil, err
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("error adding directory to watcher: %w", err)
		}
	}
	return w, nil
}

// SetDebounce changes the delay between a write event and the handler run.
func (w *Watcher) SetDebounce(d time.Duration) { w.debounce = d }

func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.isWatching {
		return ErrAlreadyWatching
	}
	w.isWatching = true
	w.done = make(chan struct{})
	go w.watchLoop()
	return nil
}

// Stop closes the underlying watcher and waits for the loop to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if !w.isWatching {
		w.mu.Unlock()
		return w.watcher.Close()
	}
	w.isWatching = false
	done := w.done
	w.mu.Unlock()

	err := w.watcher.Close()
	<-done
	return err
}

func (w *Watcher) watchLoop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFileEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleFileEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	path, err := filepath.Abs(event.Name)
	if err != nil {
		return
	}
	if _, ok := w.files[path]; !ok {
		return
	}

	time.Sleep(w.debounce)
	w.logger.Debug("file changed", zap.String("path", path))
	if err := w.handler(path); err != nil {
		w.logger.Error("handler failed", zap.String("path", path), zap.Error(err))
	}
}
