package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ShayCichocki/embassy/internal/logging"
)

// Watcher reloads a Catalog whenever its backing YAML file, or any YAML file
// in its backing directory, changes. A failed reload leaves the previous
// contents in place.
type Watcher struct {
	catalog *Catalog
	path    string
	dir     bool
	log     *logging.Logger

	watcher *fsnotify.Watcher
	done    chan struct{}
	wg      sync.WaitGroup

	// reloaded receives the new resource count after each successful reload.
	reloaded chan int
}

// Watch starts watching path and reloading it into c. For a single file the
// parent directory is watched so editors that replace the file are seen.
func Watch(c *Catalog, path string, log *logging.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create catalog watcher: %w", err)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("resolve catalog path: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		fw.Close()
		return nil, fmt.Errorf("stat catalog: %w", err)
	}
	watchDir := filepath.Dir(abs)
	if info.IsDir() {
		watchDir = abs
	}
	if err := fw.Add(watchDir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch catalog directory: %w", err)
	}

	w := &Watcher{
		catalog:  c,
		path:     abs,
		dir:      info.IsDir(),
		log:      logging.OrNop(log).Named("catalog"),
		watcher:  fw,
		done:     make(chan struct{}),
		reloaded: make(chan int, 1),
	}
	w.wg.Add(1)
	go w.run()
	return w, nil
}

// Reloaded delivers the resource count after each successful reload.
// Only the most recent count is buffered.
func (w *Watcher) Reloaded() <-chan int {
	return w.reloaded
}

// Close stops watching.
func (w *Watcher) Close() error {
	close(w.done)
	err := w.watcher.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) run() {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(filepath.Clean(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("catalog watcher error", "error", err)
		}
	}
}

func (w *Watcher) relevant(name string) bool {
	if w.dir {
		return filepath.Dir(name) == w.path && isCatalogFile(name)
	}
	return name == w.path
}

func (w *Watcher) reload() {
	resources, err := Load(w.path)
	if err != nil {
		w.log.Warn("catalog reload failed, keeping previous contents", "path", w.path, "error", err)
		return
	}
	w.catalog.Replace(resources, w.path)
	w.log.Info("catalog reloaded", "path", w.path, "resources", len(resources))

	select {
	case <-w.reloaded:
	default:
	}
	select {
	case w.reloaded <- len(resources):
	default:
	}
}
