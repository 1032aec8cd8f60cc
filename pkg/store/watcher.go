package store

import (
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Reloader re-reads a file after it changed on disk
type Reloader interface {
	Reload() error
}

// Watcher reloads stores when their files are changed by another process,
// for example `authguard reset` running while the TUI is open.
type Watcher struct {
	w       *fsnotify.Watcher
	targets map[string]Reloader
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewWatcher watches dir and calls the matching reloader whenever one of
// the given file names is written or replaced.
func NewWatcher(dir string, targets map[string]Reloader) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory rather than the files: writes replace the file by
	// renaming a temporary over it.
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		w:       fw,
		targets: make(map[string]Reloader, len(targets)),
		done:    make(chan struct{}),
	}
	for name, r := range targets {
		w.targets[filepath.Join(dir, name)] = r
	}

	w.wg.Add(1)
	go w.loop()
	return w, nil
}

func (w *Watcher) loop() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.w.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			r, ok := w.targets[filepath.Clean(ev.Name)]
			if !ok {
				continue
			}
			if err := r.Reload(); err != nil {
				logger.Warningf("failed to reload %s: %v", filepath.Base(ev.Name), err)
			}
		case err, ok := <-w.w.Errors:
			if !ok {
				return
			}
			logger.Warningf("file watcher error: %v", err)
		}
	}
}

// Close stops watching
func (w *Watcher) Close() error {
	close(w.done)
	err := w.w.Close()
	w.wg.Wait()
	return err
}
