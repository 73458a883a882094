package store

import (
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/dusk-network/kelvin/digest"
	"github.com/dusk-network/kelvin/internal/logging"
)

// WatchRoot watches this Store's roots/ directory for changes to name made
// by another process, and emits the new digest on the returned channel
// each time it changes. This is enrichment beyond spec.md's core contract:
// §5 only promises that set_root establishes happens-before *within* one
// process; across processes only crash-consistency is guaranteed. Watching
// lets a second process observe a new root without polling.
//
// The returned stop function closes the underlying watcher; callers must
// call it to avoid leaking the fsnotify file descriptor.
func (s *Store) WatchRoot(name string) (<-chan digest.Digest, func() error, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, err
	}
	rootsDir := filepath.Join(s.rootDir, "roots")
	if err := watcher.Add(rootsDir); err != nil {
		watcher.Close()
		return nil, nil, err
	}

	out := make(chan digest.Digest, 1)
	target := filepath.Join(rootsDir, name)

	go func() {
		defer close(out)
		for {
			select {
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(ev.Name) != target {
					continue
				}
				if !(ev.Op&(fsnotify.Write|fsnotify.Create) != 0) {
					continue
				}
				d, found, err := s.GetRoot(name)
				if err != nil {
					logging.Warningf("store: watch %s: %v", name, err)
					continue
				}
				if !found {
					continue
				}
				select {
				case out <- d:
				default:
					// Drop intermediate updates; a watcher only needs the
					// latest root, not every transient write.
					select {
					case <-out:
					default:
					}
					out <- d
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Warningf("store: watch %s: %v", name, err)
			}
		}
	}()

	return out, watcher.Close, nil
}
