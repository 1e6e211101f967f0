package scene

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/wippyai/box2d-bridge/errors"
)

// DebounceInterval drops repeated events for the same file inside this window.
const DebounceInterval = 100 * time.Millisecond

// Watcher reports changed scene files. Paths may name scene files or
// directories; a file is watched through its parent directory so editors
// that replace it on save keep reporting.
type Watcher struct {
	watcher *fsnotify.Watcher
	files   map[string]bool
	Events  chan string
	Errors  chan error
	closeCh chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewWatcher(paths ...string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(errors.PhaseScene, errors.KindUnsupported, err, "create file watcher")
	}

	files := make(map[string]bool)
	dirs := make(map[string]bool)
	for _, p := range paths {
		p = filepath.Clean(p)
		info, err := os.Stat(p)
		if err != nil {
			_ = fw.Close()
			return nil, errors.Wrap(errors.PhaseScene, errors.KindNotFound, err, "watch "+p)
		}
		dir := p
		if !info.IsDir() {
			files[p] = true
			dir = filepath.Dir(p)
		}
		if dirs[dir] {
			continue
		}
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, errors.Wrap(errors.PhaseScene, errors.KindInvalidInput, err, "watch "+dir)
		}
		dirs[dir] = true
	}

	w := &Watcher{
		watcher: fw,
		files:   files,
		Events:  make(chan string, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
		done:    make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Close stops the watcher. Events and Errors are closed once it returns.
func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		<-w.done
	})
	return err
}

func (w *Watcher) run() {
	defer func() {
		close(w.Events)
		close(w.Errors)
		close(w.done)
	}()
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
			if !w.wanted(event.Name) {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < DebounceInterval {
				continue
			}
			last[event.Name] = now
			select {
			case w.Events <- event.Name:
			case <-w.closeCh:
				return
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			select {
			case w.Errors <- err:
			case <-w.closeCh:
				return
			}
		case <-w.closeCh:
			return
		}
	}
}

func (w *Watcher) wanted(name string) bool {
	name = filepath.Clean(name)
	if w.files[name] {
		return true
	}
	if w.inWatchedFileDir(name) {
		return false
	}
	_, ok := FormatOf(name)
	return ok
}

// inWatchedFileDir reports whether name shares a directory with a watched
// file, in which case only the named files are of interest.
func (w *Watcher) inWatchedFileDir(name string) bool {
	dir := filepath.Dir(name)
	for f := range w.files {
		if filepath.Dir(f) == dir {
			return true
		}
	}
	return false
}
