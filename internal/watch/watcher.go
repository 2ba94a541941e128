// Package watch reruns work when feature documents or binding sources change.
package watch

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/fjglira/stepbinder/internal/domain"
)

// ChangeFunc receives the paths that settled in one debounce window.
type ChangeFunc func(ctx context.Context, paths []string) error

// Watcher watches directory trees for changes to files with given extensions.
type Watcher struct {
	mu       sync.Mutex
	watcher  *fsnotify.Watcher
	exts     map[string]bool
	debounce time.Duration
	pending  map[string]time.Time
	log      *logrus.Logger
}

// New creates a Watcher over dirs and all their subdirectories. Only files
// whose extension is in exts trigger a change; no exts means every file.
func New(dirs []string, exts []string, debounce time.Duration, log *logrus.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, domain.NewError("watch", "", 0, "failed to create file watcher", err)
	}
	w := &Watcher{
		watcher:  fw,
		exts:     make(map[string]bool, len(exts)),
		debounce: debounce,
		pending:  make(map[string]time.Time),
		log:      log,
	}
	for _, e := range exts {
		w.exts[strings.ToLower("."+strings.TrimPrefix(e, "."))] = true
	}
	for _, dir := range dirs {
		if err := w.addTree(dir); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		w.log.Debugf("Watching %s", path)
		return w.watcher.Add(path)
	})
	if err != nil {
		return domain.NewErrorWithSuggestion("watch", root, 0, "failed to watch directory",
			"check that the directory exists and is readable", err)
	}
	return nil
}

// Run blocks, calling onChange for every settled batch, until ctx is done
// or onChange returns an error.
func (w *Watcher) Run(ctx context.Context, onChange ChangeFunc) error {
	defer w.watcher.Close()

	tick := w.debounce / 2
	if tick > 100*time.Millisecond {
		tick = 100 * time.Millisecond
	}
	if tick <= 0 {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.Errorf("Watcher error: %v", err)

		case <-ticker.C:
			if paths := w.settled(); len(paths) > 0 {
				w.log.Infof("%d file(s) changed", len(paths))
				if err := onChange(ctx, paths); err != nil {
					return err
				}
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addTree(event.Name); err != nil {
				w.log.Warnf("%v", err)
			}
			return
		}
	}
	if len(w.exts) > 0 && !w.exts[strings.ToLower(filepath.Ext(event.Name))] {
		return
	}
	w.log.Debugf("%s: %s", event.Op, event.Name)

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

// settled removes and returns the paths quiet for a full debounce window.
func (w *Watcher) settled() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	now := time.Now()
	var paths []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			paths = append(paths, path)
			delete(w.pending, path)
		}
	}
	sort.Strings(paths)
	return paths
}
