package styles

import (
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// watchList hot-reloads file-backed sheets: a write to a watched file
// repopulates its sheet handle in place, so every consumer holding the
// handle sees the new content.
type watchList struct {
	mu      sync.Mutex
	watcher *fsnotify.Watcher
	sheets  map[string]*Sheet
	logger  *slog.Logger
	done    chan struct{}
}

// watchFile registers a file path for hot reload. Watcher startup
// failure is logged and disables hot reload; resolution still works.
func (r *Resolver) watchFile(path string, s *Sheet) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.watch == nil {
		w, err := fsnotify.NewWatcher()
		if err != nil {
			r.logger.Warn("stylesheet watcher unavailable", "error", err)
			return
		}
		r.watch = &watchList{
			watcher: w,
			sheets:  make(map[string]*Sheet),
			logger:  r.logger,
			done:    make(chan struct{}),
		}
		go r.watch.run()
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	r.watch.mu.Lock()
	r.watch.sheets[abs] = s
	r.watch.mu.Unlock()

	// Watch the directory: editors often replace files, which drops a
	// watch on the file itself.
	if err := r.watch.watcher.Add(filepath.Dir(abs)); err != nil {
		r.logger.Warn("stylesheet watch failed", "path", path, "error", err)
	}
}

func (w *watchList) run() {
	for {
		select {
		case <-w.done:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			abs, err := filepath.Abs(ev.Name)
			if err != nil {
				abs = ev.Name
			}
			w.mu.Lock()
			sheet := w.sheets[abs]
			w.mu.Unlock()
			if sheet == nil {
				continue
			}
			body, err := os.ReadFile(abs)
			if err != nil {
				w.logger.Warn("stylesheet reload failed", "path", abs, "error", err)
				continue
			}
			sheet.populate(string(body), nil)
			w.logger.Debug("stylesheet reloaded", "path", abs)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("stylesheet watcher error", "error", err)
		}
	}
}

func (w *watchList) close() error {
	close(w.done)
	return w.watcher.Close()
}
