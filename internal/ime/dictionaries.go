package ime

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/sourcegraph/conc"

	"vnkey/internal/trie"
	"vnkey/internal/watcher"
)

// Paths locates the dictionary files. Empty paths are skipped.
type Paths struct {
	English    string
	Vietnamese string
	Custom     string

	// Debounce is the quiet period WatchDictionaries waits for.
	Debounce time.Duration
}

// LoadReport tells which loads succeeded.
type LoadReport struct {
	English    bool
	Vietnamese bool
	Custom     bool
}

func (r LoadReport) String() string {
	return fmt.Sprintf("english=%t vietnamese=%t custom=%t", r.English, r.Vietnamese, r.Custom)
}

// LoadEnglishDictionary loads a PHT3 trie. On failure the dictionary in
// place is kept.
func (e *Engine) LoadEnglishDictionary(path string) bool {
	return e.loadTrie("english", path, e.english.Store)
}

// LoadVietnameseDictionary loads a PHT3 trie of Telex spellings. On
// failure the dictionary in place is kept.
func (e *Engine) LoadVietnameseDictionary(path string) bool {
	return e.loadTrie("vietnamese", path, e.vietnamese.Store)
}

func (e *Engine) loadTrie(name, path string, store func(*trie.Dictionary)) bool {
	start := time.Now()
	d, err := trie.LoadFile(path)
	if err != nil {
		e.metrics.Load().DictionaryFailed(name)
		e.logger().Warn("dictionary load failed", "dictionary", name, "path", path, "error", err)
		return false
	}
	store(d)
	e.metrics.Load().DictionaryLoaded(name, d.WordCount(), time.Since(start))
	e.logger().Info("dictionary loaded",
		"dictionary", name,
		"path", path,
		"words", d.WordCount(),
		"nodes", d.NodeCount(),
		"elapsed", time.Since(start))
	return true
}

// IsEnglishInitialized reports whether a valid English trie is loaded.
func (e *Engine) IsEnglishInitialized() bool {
	return e.english.Load().Initialized()
}

// IsVietnameseInitialized reports whether a valid Vietnamese trie is loaded.
func (e *Engine) IsVietnameseInitialized() bool {
	return e.vietnamese.Load().Initialized()
}

// LoadCustomDictionary replaces the custom overlay with the entries in
// data. Invalid JSON leaves the overlay empty and reports false.
func (e *Engine) LoadCustomDictionary(data []byte) bool {
	start := time.Now()
	if err := e.custom.Load(data); err != nil {
		e.metrics.Load().DictionaryFailed("custom")
		e.logger().Warn("custom dictionary rejected", "error", err)
		return false
	}
	en, vi := e.custom.Counts()
	e.metrics.Load().DictionaryLoaded("custom", en+vi, time.Since(start))
	e.logger().Info("custom dictionary loaded", "english", en, "vietnamese", vi)
	return true
}

// LoadCustomDictionaryFile loads the overlay from a file. A missing file
// yields an empty overlay.
func (e *Engine) LoadCustomDictionaryFile(path string) bool {
	start := time.Now()
	if err := e.custom.LoadFile(path); err != nil {
		e.metrics.Load().DictionaryFailed("custom")
		e.logger().Warn("custom dictionary rejected", "path", path, "error", err)
		return false
	}
	en, vi := e.custom.Counts()
	e.metrics.Load().DictionaryLoaded("custom", en+vi, time.Since(start))
	e.logger().Info("custom dictionary loaded", "path", path, "english", en, "vietnamese", vi)
	return true
}

// ContainsCustomEnglish reports whether word is a custom English word.
func (e *Engine) ContainsCustomEnglish(word string) bool {
	return e.custom.ContainsEnglish(word)
}

// ContainsCustomVietnamese reports whether word is a custom Vietnamese word.
func (e *Engine) ContainsCustomVietnamese(word string) bool {
	return e.custom.ContainsVietnamese(word)
}

// Paths returns the dictionary locations set by ApplyConfig or SetPaths.
func (e *Engine) Paths() Paths {
	return *e.paths.Load()
}

// SetPaths replaces the dictionary locations.
func (e *Engine) SetPaths(p Paths) {
	e.paths.Store(&p)
}

// LoadDictionaries loads every configured dictionary concurrently.
func (e *Engine) LoadDictionaries() LoadReport {
	p := e.Paths()
	var report LoadReport

	var wg conc.WaitGroup
	if p.English != "" {
		wg.Go(func() { report.English = e.LoadEnglishDictionary(p.English) })
	}
	if p.Vietnamese != "" {
		wg.Go(func() { report.Vietnamese = e.LoadVietnameseDictionary(p.Vietnamese) })
	}
	if p.Custom != "" {
		wg.Go(func() { report.Custom = e.LoadCustomDictionaryFile(p.Custom) })
	}
	wg.Wait()
	return report
}

// WatchDictionaries reloads dictionaries when their files change, until
// ctx is done. The returned channel is closed once watching has stopped.
func (e *Engine) WatchDictionaries(ctx context.Context) (<-chan struct{}, error) {
	p := e.Paths()
	debounce := p.Debounce
	if debounce <= 0 {
		debounce = 200 * time.Millisecond
	}

	w, err := watcher.New([]string{p.English, p.Vietnamese, p.Custom}, debounce)
	if err != nil {
		return nil, fmt.Errorf("create dictionary watcher: %w", err)
	}
	if err := w.Start(); err != nil {
		w.Stop()
		return nil, fmt.Errorf("start dictionary watcher: %w", err)
	}

	reloaders := make(map[string]func(string) bool, 3)
	for path, fn := range map[string]func(string) bool{
		p.English:    e.LoadEnglishDictionary,
		p.Vietnamese: e.LoadVietnameseDictionary,
		p.Custom:     e.LoadCustomDictionaryFile,
	} {
		if path == "" {
			continue
		}
		if abs, err := filepath.Abs(path); err == nil {
			reloaders[abs] = fn
		}
	}

	log := e.logger().WithContext(e.ContextWithSession(ctx))
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer w.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-w.Events():
				if !ok {
					return
				}
				if reload, found := reloaders[ev.Path]; found {
					log.Info("dictionary changed", "path", ev.Path, "size", ev.Size)
					reload(ev.Path)
				}
			case err, ok := <-w.Errors():
				if !ok {
					return
				}
				log.Warn("dictionary watcher error", "error", err)
			}
		}
	}()
	return done, nil
}
