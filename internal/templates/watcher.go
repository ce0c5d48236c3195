package templates

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const defaultDebounce = 400 * time.Millisecond

// Watcher watches the template directory and invalidates cached schemas when
// a template file changes. Editors fire bursts of write events per save, so
// invalidations are debounced per file.
type Watcher struct {
	store    *Store
	debounce time.Duration
	logger   *zap.Logger

	watcher *fsnotify.Watcher
	mu      sync.Mutex
	timers  map[string]*time.Timer
	started bool
	done    chan struct{}
	stopped sync.Once
}

// NewWatcher creates a watcher over the store's template directory.
func NewWatcher(store *Store, logger *zap.Logger) *Watcher {
	return &Watcher{
		store:    store,
		debounce: defaultDebounce,
		logger:   logger,
		timers:   make(map[string]*time.Timer),
		done:     make(chan struct{}),
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	if err := fsWatcher.Add(w.store.dir); err != nil {
		_ = fsWatcher.Close()
		w.mu.Unlock()
		return err
	}
	w.watcher = fsWatcher
	w.started = true
	w.mu.Unlock()

	w.logger.Debug("template watcher started", zap.String("dir", w.store.dir))
	go w.run(ctx)
	return nil
}

func (w *Watcher) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if err != nil {
				w.logger.Debug("template watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	name := filepath.Base(ev.Name)
	if !w.store.matchExtension(name) {
		return
	}
	switch {
	case ev.Op.Has(fsnotify.Remove) || ev.Op.Has(fsnotify.Rename):
		w.cancelTimer(name)
		w.store.Invalidate(name)
	case ev.Op.Has(fsnotify.Create) || ev.Op.Has(fsnotify.Write):
		w.debounceInvalidate(name)
	}
}

func (w *Watcher) debounceInvalidate(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[name]; ok {
		timer.Stop()
	}
	w.timers[name] = time.AfterFunc(w.debounce, func() {
		w.store.Invalidate(name)
		w.mu.Lock()
		delete(w.timers, name)
		w.mu.Unlock()
	})
}

func (w *Watcher) cancelTimer(name string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.timers[name]; ok {
		timer.Stop()
		delete(w.timers, name)
	}
}

// Stop halts the watcher. Safe to call more than once.
func (w *Watcher) Stop() {
	w.stopped.Do(func() {
		close(w.done)
		w.mu.Lock()
		if w.watcher != nil {
			_ = w.watcher.Close()
		}
		for name, timer := range w.timers {
			timer.Stop()
			delete(w.timers, name)
		}
		w.mu.Unlock()
	})
}
