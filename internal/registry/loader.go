package registry

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"gopkg.in/yaml.v3"

	"github.com/kotori-ai/kotori/pkg/models"
)

// catalogFile is the on-disk shape of a responder catalog.
type catalogFile struct {
	Responders []models.Descriptor `yaml:"responders"`
}

// LoadCatalog reads a YAML catalog file and registers every descriptor
// into r. Registration is idempotent, so reloading the same file is safe.
func LoadCatalog(r *Registry, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("load catalog %s: %w", path, err)
	}

	for _, d := range file.Responders {
		if err := r.Register(d); err != nil {
			return fmt.Errorf("load catalog %s: %w", path, err)
		}
	}

	log.Printf("[registry] loaded %d responders from %s", len(file.Responders), path)
	return nil
}

// Watcher reloads a catalog file into a registry when it changes on disk.
type Watcher struct {
	registry *Registry
	path     string
	watcher  *fsnotify.Watcher
	done     chan struct{}
}

// Watch starts watching the catalog file and re-registering its
// descriptors on every write. Close the returned Watcher to stop.
func Watch(r *Registry, path string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch catalog: %w", err)
	}

	// Watch the directory rather than the file so editors that
	// rename-on-save do not drop the watch.
	if err := fw.Add(filepath.Dir(path)); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch catalog: %w", err)
	}

	w := &Watcher{
		registry: r,
		path:     path,
		watcher:  fw,
		done:     make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// loop processes file events until the watcher is closed.
func (w *Watcher) loop() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := LoadCatalog(w.registry, w.path); err != nil {
				log.Printf("[registry] reload failed: %v", err)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[registry] watch error: %v", err)
		case <-w.done:
			return
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	close(w.done)
	return w.watcher.Close()
}
