package config

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a config file whenever it changes on disk.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
	stopCh  chan struct{}
	done    sync.WaitGroup

	mu       sync.Mutex
	onChange func(Config)
	onError  func(error)
}

// NewWatcher watches the directory holding path, so that editors that replace
// the file instead of writing it in place are still seen.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{path: abs, watcher: fw}, nil
}

// Path returns the absolute path of the watched file.
func (w *Watcher) Path() string {
	return w.path
}

// OnChange sets the callback given each successfully reloaded config. It is
// called from the watcher goroutine.
func (w *Watcher) OnChange(callback func(Config)) {
	w.mu.Lock()
	w.onChange = callback
	w.mu.Unlock()
}

// OnError sets the callback given load and watch errors. A file that fails to
// load or validate does not stop the watcher.
func (w *Watcher) OnError(callback func(error)) {
	w.mu.Lock()
	w.onError = callback
	w.mu.Unlock()
}

// Start begins watching in a background goroutine.
func (w *Watcher) Start() {
	w.stopCh = make(chan struct{})
	w.done.Add(1)
	go w.watchLoop()
}

// Stop ends the watch and releases the underlying watcher.
func (w *Watcher) Stop() error {
	if w.stopCh != nil {
		close(w.stopCh)
		w.done.Wait()
		w.stopCh = nil
	}
	return w.watcher.Close()
}

func (w *Watcher) watchLoop() {
	defer w.done.Done()
	for {
		select {
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Load(w.path)
	if err != nil {
		w.report(err)
		return
	}
	w.mu.Lock()
	cb := w.onChange
	w.mu.Unlock()
	if cb != nil {
		cb(cfg)
	}
}

func (w *Watcher) report(err error) {
	w.mu.Lock()
	cb := w.onError
	w.mu.Unlock()
	if cb != nil {
		cb(err)
	}
}
