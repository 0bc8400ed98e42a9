package editor

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Debounce drops repeated events for the same file inside this window.
const Debounce = 100 * time.Millisecond

// Watcher reports external changes to open path files. fsnotify watches
// directories, so events for files that are not tracked are dropped.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once

	mu    sync.Mutex
	files map[string]string // normalized -> path as given
	dirs  map[string]int
}

func NewWatcher(files ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	watcher := &Watcher{
		watcher: w,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		files:   make(map[string]string),
		dirs:    make(map[string]int),
	}
	for _, f := range files {
		if err := watcher.Add(f); err != nil {
			_ = w.Close()
			return nil, err
		}
	}
	go watcher.run()
	return watcher, nil
}

// Add starts reporting changes to file.
func (w *Watcher) Add(file string) error {
	key := NormalizePath(file)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[key]; ok {
		return nil
	}
	dir := filepath.Dir(file)
	if w.dirs[dir] == 0 {
		if err := w.watcher.Add(dir); err != nil {
			return err
		}
	}
	w.dirs[dir]++
	w.files[key] = file
	return nil
}

// Remove stops reporting changes to file.
func (w *Watcher) Remove(file string) {
	key := NormalizePath(file)
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, ok := w.files[key]; !ok {
		return
	}
	delete(w.files, key)
	dir := filepath.Dir(file)
	w.dirs[dir]--
	if w.dirs[dir] <= 0 {
		delete(w.dirs, dir)
		_ = w.watcher.Remove(dir)
	}
}

// Sync makes the watched set match the saved files of the open tabs.
func (w *Watcher) Sync(tabs []*Tab) {
	want := make(map[string]string)
	for _, t := range tabs {
		if t.Path() != "" {
			want[NormalizePath(t.Path())] = t.Path()
		}
	}
	w.mu.Lock()
	var stale []string
	for key, f := range w.files {
		if _, ok := want[key]; !ok {
			stale = append(stale, f)
		}
	}
	w.mu.Unlock()
	for _, f := range stale {
		w.Remove(f)
	}
	for _, f := range want {
		_ = w.Add(f)
	}
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
	})
	return err
}

func (w *Watcher) tracked(name string) (string, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	f, ok := w.files[NormalizePath(name)]
	return f, ok
}

func (w *Watcher) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			file, ok := w.tracked(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[file]; ok && now.Sub(t) < Debounce {
				continue
			}
			last[file] = now
			select {
			case w.Events <- file:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			default:
			}
		case <-w.closeCh:
			return
		}
	}
}
