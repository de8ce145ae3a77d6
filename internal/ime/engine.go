package ime

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"vnkey/internal/config"
	"vnkey/internal/customdict"
	"vnkey/internal/logging"
	"vnkey/internal/metrics"
	"vnkey/internal/restore"
	"vnkey/internal/session"
	"vnkey/internal/trie"
)

// Key, Modifiers and Result are the session types front ends deal in.
type (
	Key       = session.Key
	Modifiers = session.Modifiers
	Result    = session.Result
)

// Modifier bits.
const (
	ModShift    = session.ModShift
	ModCapsLock = session.ModCapsLock
	ModControl  = session.ModControl
	ModAlt      = session.ModAlt
	ModMeta     = session.ModMeta
)

// Engine is the keystroke transformation engine behind a platform IME.
type Engine struct {
	mu      sync.Mutex
	session *session.Session
	id      string
	started time.Time
	keys    uint64
	hits    map[string]int

	english    atomic.Pointer[trie.Dictionary]
	vietnamese atomic.Pointer[trie.Dictionary]
	custom     *customdict.Overlay

	paths   atomic.Pointer[Paths]
	log     atomic.Pointer[logging.Logger]
	metrics atomic.Pointer[metrics.Engine]
}

// NewEngine creates an engine with no dictionaries loaded.
func NewEngine(opts session.Options) *Engine {
	e := &Engine{
		custom:  customdict.New(),
		hits:    make(map[string]int),
		id:      logging.NewSessionID(),
		started: time.Now(),
	}
	e.session = session.New(opts, restorer{e}, nil)
	e.paths.Store(&Paths{})
	e.log.Store(logging.Default().WithComponent("engine"))
	return e
}

// FromConfig creates an engine configured by cfg. Dictionaries are not
// loaded; call LoadDictionaries.
func FromConfig(cfg *config.Config, log *logging.Logger) (*Engine, error) {
	e := NewEngine(session.DefaultOptions())
	if log != nil {
		e.SetLogger(log)
	}
	if err := e.ApplyConfig(cfg); err != nil {
		return nil, err
	}
	return e, nil
}

// SetLogger replaces the engine logger.
func (e *Engine) SetLogger(l *logging.Logger) {
	e.log.Store(l.WithComponent("engine"))
}

func (e *Engine) logger() *logging.Logger {
	return e.log.Load()
}

// SetMetrics makes the engine record into m. nil stops recording.
func (e *Engine) SetMetrics(m *metrics.Engine) {
	e.metrics.Store(m)
}

// restorer feeds the current dictionaries to a restore pipeline. The
// dictionaries are read once per decision, so a reload mid-word takes
// effect at the next break.
type restorer struct{ e *Engine }

func (r restorer) Decide(w restore.Word) restore.Verdict {
	p := restore.Pipeline{
		English:    lexicon(r.e.english.Load()),
		Vietnamese: lexicon(r.e.vietnamese.Load()),
		Custom:     r.e.custom,
	}
	return p.Decide(w)
}

func lexicon(d *trie.Dictionary) restore.Lexicon {
	if d == nil {
		return nil
	}
	return d
}

// HandleKey processes one key event. Key releases pass through untouched.
// mods is merged into key.Modifiers.
func (e *Engine) HandleKey(key Key, isDown bool, mods Modifiers) Result {
	if !isDown {
		return Result{PassThrough: true}
	}
	key.Modifiers |= mods

	e.mu.Lock()
	defer e.mu.Unlock()

	e.keys++
	res := e.session.HandleKey(key)
	m := e.metrics.Load()
	m.Key(res.Action.String())
	switch res.Action {
	case session.ActionRestore:
		v := e.session.LastVerdict()
		m.Restored(v.Step)
		e.logger().Debug("word restored", "session", e.id, "step", v.Step, "word", string(res.Text))
	case session.ActionReplaceMacro:
		e.hits[e.session.LastMacro()]++
		m.MacroExpanded()
		e.logger().Debug("macro expanded", "session", e.id, "key", e.session.LastMacro(), "expansion", string(res.Text))
	}
	return res
}

// StartNewSession drops the word in progress. Front ends call it on focus
// changes and mouse clicks.
func (e *Engine) StartNewSession() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.StartNewSession()
	e.id = logging.NewSessionID()
	e.started = time.Now()
	e.keys = 0
	e.logger().Debug("session started", "session", e.id)
}

// PrimeUpperCaseFirstChar capitalizes the next word's first letter.
func (e *Engine) PrimeUpperCaseFirstChar() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.PrimeUpperCaseFirstChar()
}

// RestoreToRawKeys replaces the word in progress with the keys typed.
// It reports false when there is no word.
func (e *Engine) RestoreToRawKeys() (Result, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.RestoreToRawKeys()
}

// SetMacros replaces the macro table. Keys are matched case-insensitively.
func (e *Engine) SetMacros(macros map[string]string) {
	table := make(session.MacroTable, len(macros))
	for k, v := range macros {
		table[strings.ToLower(strings.TrimSpace(k))] = v
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.session.SetMacros(table)
}

// TakeMacroHits returns the macro usage counted since the last call.
func (e *Engine) TakeMacroHits() map[string]int {
	e.mu.Lock()
	defer e.mu.Unlock()
	hits := e.hits
	e.hits = make(map[string]int)
	return hits
}

// ApplyConfig switches options, inline macros and dictionary paths. The
// word in progress is dropped. Dictionaries are not reloaded.
func (e *Engine) ApplyConfig(cfg *config.Config) error {
	opts, err := cfg.SessionOptions()
	if err != nil {
		return err
	}
	snapshot := cfg.Clone()

	e.paths.Store(&Paths{
		English:    snapshot.Dictionaries.English,
		Vietnamese: snapshot.Dictionaries.Vietnamese,
		Custom:     snapshot.Dictionaries.Custom,
		Debounce:   time.Duration(snapshot.Dictionaries.DebounceMs) * time.Millisecond,
	})

	e.mu.Lock()
	e.session.SetOptions(opts)
	e.mu.Unlock()

	if snapshot.Macros.Entries != nil {
		e.SetMacros(snapshot.Macros.Entries)
	}
	e.logger().Info("config applied",
		"method", opts.Method.String(),
		"style", opts.Style.String(),
		"restore", opts.AutoRestore)
	return nil
}

// Options returns the session options in effect.
func (e *Engine) Options() session.Options {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session.Options()
}

// SessionInfo contains read-only engine state.
type SessionInfo struct {
	ID         string
	StartTime  time.Time
	Keystrokes uint64
	Word       string
	RawKeys    string

	EnglishWords     int
	VietnameseWords  int
	CustomEnglish    int
	CustomVietnamese int
}

// GetSessionInfo returns a copy of the current state.
func (e *Engine) GetSessionInfo() *SessionInfo {
	info := &SessionInfo{}
	if d := e.english.Load(); d != nil {
		info.EnglishWords = d.WordCount()
	}
	if d := e.vietnamese.Load(); d != nil {
		info.VietnameseWords = d.WordCount()
	}
	info.CustomEnglish, info.CustomVietnamese = e.custom.Counts()

	e.mu.Lock()
	defer e.mu.Unlock()
	info.ID = e.id
	info.StartTime = e.started
	info.Keystrokes = e.keys
	info.Word = e.session.Word()
	info.RawKeys = e.session.RawKeys()
	return info
}

// ContextWithSession returns ctx tagged with the engine session id.
func (e *Engine) ContextWithSession(ctx context.Context) context.Context {
	e.mu.Lock()
	id := e.id
	e.mu.Unlock()
	return logging.ContextWithSessionID(ctx, id)
}

// keyHandler adapts the engine to session.Typist: every key is a press.
type keyHandler struct{ e *Engine }

func (h keyHandler) HandleKey(k Key) Result { return h.e.HandleKey(k, true, 0) }

// Typist returns a typing simulator driven by the engine.
func (e *Engine) Typist() *session.Typist {
	return &session.Typist{Handler: keyHandler{e}}
}
