package skill

import (
	"log"
	"os"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the registry whenever a file under the user skill directory
// changes, until stop is closed. A user directory that does not exist yet
// is treated as "nothing to watch" without logging; errors creating the
// watcher are logged. Neither is fatal, since bundled skills still work
// without it.
func (r *Registry) Watch(stop <-chan struct{}) {
	if _, err := os.Stat(r.userDir); err != nil {
		return
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		log.Printf("[skill] watch disabled: %v", err)
		return
	}

	if err := watcher.Add(r.userDir); err != nil {
		log.Printf("[skill] watch disabled: %v", err)
		watcher.Close()
		return
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-stop:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}
				if err := r.Reload(); err != nil {
					log.Printf("[skill] reload after %s: %v", event.Name, err)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("[skill] watch error: %v", err)
			}
		}
	}()
}
