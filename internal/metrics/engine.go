package metrics

import "time"

// Engine records what the transformation engine does. A nil *Engine
// records nothing.
type Engine struct {
	registry *Registry

	Keystrokes      *Counter
	MacroExpansions *Counter
}

// NewEngine registers the engine metrics in registry.
func NewEngine(registry *Registry) *Engine {
	return &Engine{
		registry:        registry,
		Keystrokes:      registry.Counter("keystrokes_total", "Key presses handled by the engine.", nil),
		MacroExpansions: registry.Counter("macro_expansions_total", "Macros replaced by their expansion.", nil),
	}
}

// Registry returns the registry the metrics live in.
func (m *Engine) Registry() *Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Key counts one key press and the action it produced.
func (m *Engine) Key(action string) {
	if m == nil {
		return
	}
	m.Keystrokes.Inc()
	m.registry.Counter("actions_total", "Engine results by action.", Labels{"action": action}).Inc()
}

// Restored counts a word put back to its raw keys, by deciding step.
func (m *Engine) Restored(step string) {
	if m == nil {
		return
	}
	m.registry.Counter("restores_total", "Words restored to their raw keys, by deciding step.", Labels{"step": step}).Inc()
}

// MacroExpanded counts one macro expansion.
func (m *Engine) MacroExpanded() {
	if m == nil {
		return
	}
	m.MacroExpansions.Inc()
}

// DictionaryLoaded records a successful load and the word count now in use.
func (m *Engine) DictionaryLoaded(name string, words int, took time.Duration) {
	if m == nil {
		return
	}
	l := Labels{"dictionary": name}
	m.registry.Counter("dictionary_loads_total", "Dictionary loads by outcome.", l.with("result", "ok")).Inc()
	m.registry.Gauge("dictionary_words", "Words in the loaded dictionary.", l).Set(int64(words))
	m.registry.Histogram("dictionary_load_seconds", "Time spent loading dictionaries.", l, nil).ObserveDuration(took)
}

// DictionaryFailed records a load that kept the previous dictionary.
func (m *Engine) DictionaryFailed(name string) {
	if m == nil {
		return
	}
	m.registry.Counter("dictionary_loads_total", "Dictionary loads by outcome.", Labels{"dictionary": name, "result": "error"}).Inc()
}
