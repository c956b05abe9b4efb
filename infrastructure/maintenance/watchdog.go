package maintenance

import (
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// debounceWindow suppresses repeat triggers from bursts of writes.
const debounceWindow = 5 * time.Second

// Watchdog watches a data directory and invokes a callback when its
// contents change out from under the service.
type Watchdog struct {
	logger   *zap.Logger
	onChange func(path string)
	now      func() time.Time

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	mu        sync.Mutex
	lastFired time.Time
}

// NewWatchdog creates a watchdog over path. The callback runs at most
// once per debounce window.
func NewWatchdog(path string, onChange func(path string), logger *zap.Logger) (*Watchdog, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &Watchdog{
		logger:   logger,
		onChange: onChange,
		now:      time.Now,
		watcher:  watcher,
		done:     make(chan struct{}),
	}

	w.wg.Add(1)
	go w.loop()

	logger.Info("data path watchdog started", zap.String("path", path))
	return w, nil
}

// Stop shuts the watchdog down.
func (w *Watchdog) Stop() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watchdog) loop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.handle(event.Name)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watchdog error", zap.Error(err))
		}
	}
}

func (w *Watchdog) handle(path string) {
	w.mu.Lock()
	now := w.now()
	if now.Sub(w.lastFired) < debounceWindow {
		w.mu.Unlock()
		return
	}
	w.lastFired = now
	w.mu.Unlock()

	w.logger.Info("data change detected", zap.String("path", path))
	if w.onChange != nil {
		w.onChange(path)
	}
}
