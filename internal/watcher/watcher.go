// Package watcher reports changes to a fixed set of files once they have
// been quiet for a debounce interval. The engine uses it to hot-reload
// dictionaries.
package watcher

import (
	"crypto/sha256"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Event reports a file whose content changed.
type Event struct {
	Path      string
	Hash      [32]byte
	Size      int64
	Timestamp time.Time
}

// Watcher monitors files for content changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	files     map[string]bool
	interval  time.Duration

	// pending: path -> time of the last write seen
	// hashes: path -> content hash last reported (or found at Start)
	pending map[string]time.Time
	hashes  map[string][32]byte
	stateMu sync.Mutex

	events chan Event
	errors chan error

	done chan struct{}
	wg   sync.WaitGroup
}

// New creates a watcher for files. The files need not exist yet.
func New(files []string, interval time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher: fsWatcher,
		files:     make(map[string]bool, len(files)),
		interval:  interval,
		pending:   make(map[string]time.Time),
		hashes:    make(map[string][32]byte),
		events:    make(chan Event, 16),
		errors:    make(chan error, 4),
		done:      make(chan struct{}),
	}
	for _, f := range files {
		if f == "" {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			fsWatcher.Close()
			return nil, err
		}
		w.files[abs] = true
	}
	return w, nil
}

// Events returns the channel of change events.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Errors returns the channel of errors.
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Start begins watching. Files are watched through their directories so
// that atomic replacement (write to temp, rename) is seen.
func (w *Watcher) Start() error {
	dirs := make(map[string]bool)
	for path := range w.files {
		dir := filepath.Dir(path)
		if !dirs[dir] {
			if err := w.fsWatcher.Add(dir); err != nil {
				return err
			}
			dirs[dir] = true
		}
		if hash, _, err := HashFile(path); err == nil {
			w.hashes[path] = hash
		}
	}

	w.wg.Add(2)
	go w.eventLoop()
	go w.debounceLoop()
	return nil
}

// Stop gracefully shuts down the watcher.
func (w *Watcher) Stop() error {
	close(w.done)
	w.wg.Wait()
	close(w.events)
	close(w.errors)
	return w.fsWatcher.Close()
}

func (w *Watcher) eventLoop() {
	defer w.wg.Done()

	for {
		select {
		case <-w.done:
			return

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			path := filepath.Clean(event.Name)
			if !w.files[path] {
				continue
			}

			w.stateMu.Lock()
			w.pending[path] = time.Now()
			w.stateMu.Unlock()

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.report(err)
		}
	}
}

func (w *Watcher) debounceLoop() {
	defer w.wg.Done()

	tick := w.interval / 4
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case now := <-ticker.C:
			w.checkStableFiles(now)
		}
	}
}

// checkStableFiles hashes files that have been quiet for the interval and
// reports those whose content differs from the last report. The lock is
// released during file I/O.
func (w *Watcher) checkStableFiles(now time.Time) {
	threshold := now.Add(-w.interval)

	stable := make(map[string]time.Time)
	w.stateMu.Lock()
	for path, lastMod := range w.pending {
		if !lastMod.After(threshold) {
			stable[path] = lastMod
		}
	}
	w.stateMu.Unlock()

	for path, lastMod := range stable {
		hash, size, err := HashFile(path)

		w.stateMu.Lock()
		if cur, ok := w.pending[path]; !ok || !cur.Equal(lastMod) {
			// written again while hashing
			w.stateMu.Unlock()
			continue
		}
		if err != nil {
			delete(w.pending, path)
			w.stateMu.Unlock()
			if !os.IsNotExist(err) {
				w.report(err)
			}
			continue
		}
		if prev, ok := w.hashes[path]; ok && prev == hash {
			delete(w.pending, path)
			w.stateMu.Unlock()
			continue
		}

		select {
		case w.events <- Event{Path: path, Hash: hash, Size: size, Timestamp: now}:
			delete(w.pending, path)
			w.hashes[path] = hash
		default:
			// channel full, retry on the next tick
		}
		w.stateMu.Unlock()
	}
}

func (w *Watcher) report(err error) {
	select {
	case w.errors <- err:
	default:
	}
}

// HashFile computes the SHA-256 of a file.
func HashFile(path string) ([32]byte, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return [32]byte{}, 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return [32]byte{}, 0, err
	}

	var hash [32]byte
	copy(hash[:], h.Sum(nil))
	return hash, size, nil
}

// Files returns the watched paths.
func (w *Watcher) Files() []string {
	out := make([]string, 0, len(w.files))
	for p := range w.files {
		out = append(out, p)
	}
	return out
}

// Pending returns the number of files waiting to settle.
func (w *Watcher) Pending() int {
	w.stateMu.Lock()
	defer w.stateMu.Unlock()
	return len(w.pending)
}
