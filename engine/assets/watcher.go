package assets

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-gl/engine/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to a set of files. Bursts of events, such as an exporter writing a document and
// then its buffers, are coalesced into one signal once the files have been quiet for the debounce delay.
type Watcher interface {
	// Changes returns the channel signalled after a watched file is written, created, renamed or removed.
	// At most one signal is pending; a slow reader sees one signal for several changes.
	//
	// Returns:
	//   - <-chan struct{}: the change signal
	Changes() <-chan struct{}

	// SetFiles replaces the watched set, for example after a reload changed the referenced resources.
	//
	// Parameters:
	//   - files: the files to watch
	//
	// Returns:
	//   - error: error if a directory cannot be watched
	SetFiles(files []string) error

	// Close stops watching and closes the Changes channel.
	//
	// Returns:
	//   - error: error from the underlying notifier
	Close() error
}

type watcher struct {
	mu       sync.Mutex
	notify   *fsnotify.Watcher
	files    map[string]struct{}
	dirs     map[string]struct{}
	debounce time.Duration
	timer    *time.Timer

	changes chan struct{}
	done    chan struct{}
	wg      sync.WaitGroup
	closed  bool
}

var _ Watcher = &watcher{}

// NewWatcher starts watching files. The parent directory of each file is watched rather than the file itself,
// so that editors which save by replacing the file are still seen.
//
// Parameters:
//   - files: the files to watch, usually Asset.Files
//   - options: functional options for the watcher
//
// Returns:
//   - Watcher: the running watcher
//   - error: error if the notifier cannot be created or a directory cannot be watched
func NewWatcher(files []string, options ...WatcherBuilderOption) (Watcher, error) {
	n, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	w := &watcher{
		notify:   n,
		files:    make(map[string]struct{}),
		dirs:     make(map[string]struct{}),
		debounce: 200 * time.Millisecond,
		changes:  make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	if err := w.SetFiles(files); err != nil {
		n.Close()
		return nil, err
	}

	w.wg.Add(1)
	go w.run()
	return w, nil
}

func (w *watcher) Changes() <-chan struct{} {
	return w.changes
}

func (w *watcher) SetFiles(files []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	wanted := make(map[string]struct{})
	w.files = make(map[string]struct{}, len(files))
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = struct{}{}
		wanted[filepath.Dir(abs)] = struct{}{}
	}

	for dir := range wanted {
		if _, ok := w.dirs[dir]; ok {
			continue
		}
		if err := w.notify.Add(dir); err != nil {
			return fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		w.dirs[dir] = struct{}{}
	}
	for dir := range w.dirs {
		if _, ok := wanted[dir]; ok {
			continue
		}
		_ = w.notify.Remove(dir)
		delete(w.dirs, dir)
	}
	return nil
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	close(w.done)
	w.mu.Unlock()

	err := w.notify.Close()
	w.wg.Wait()
	close(w.changes)
	return err
}

func (w *watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case e, ok := <-w.notify.Events:
			if !ok {
				return
			}
			if e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.touch(e.Name)

		case err, ok := <-w.notify.Errors:
			if !ok {
				return
			}
			logging.Warn("[Watcher] %v", err)

		case <-w.done:
			return
		}
	}
}

// touch restarts the debounce timer when name is watched.
func (w *watcher) touch(name string) {
	abs, err := filepath.Abs(name)
	if err != nil {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if _, ok := w.files[abs]; !ok {
		return
	}
	logging.Debug("[Watcher] %s changed", abs)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.signal)
}

func (w *watcher) signal() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	select {
	case w.changes <- struct{}{}:
	default:
	}
}
