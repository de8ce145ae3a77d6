package session

import "fmt"

// Action tells the injector what kind of edit a Result carries.
type Action int

const (
	// ActionNone leaves the text alone.
	ActionNone Action = iota
	// ActionModify rewrites the tail of the current word.
	ActionModify
	// ActionRestore replaces the finished word with the typed keys.
	ActionRestore
	// ActionReplaceMacro replaces the finished word with a macro expansion.
	ActionReplaceMacro
	// ActionRestoreAndReset replaces the current word with the typed keys
	// and ends it.
	ActionRestoreAndReset
)

var actionNames = [...]string{"none", "modify", "restore", "replace-macro", "restore-and-reset"}

func (a Action) String() string {
	if a >= 0 && int(a) < len(actionNames) {
		return actionNames[a]
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

// Result is the edit one key press asks for. The injector deletes
// Backspaces characters before the cursor and types Text. When
// PassThrough is set the original key is delivered afterwards.
type Result struct {
	Action      Action
	Backspaces  int
	Text        []rune
	PassThrough bool
}

var pass = Result{Action: ActionNone, PassThrough: true}

func (r Result) String() string {
	return fmt.Sprintf("%s bs=%d text=%q pass=%t", r.Action, r.Backspaces, string(r.Text), r.PassThrough)
}

// Apply performs the edit on text. Delivering the original key is left
// to the caller.
func (r Result) Apply(text []rune) []rune {
	n := r.Backspaces
	if n > len(text) {
		n = len(text)
	}
	out := append([]rune(nil), text[:len(text)-n]...)
	return append(out, r.Text...)
}

// diff returns the edit turning before into after.
func diff(action Action, before, after []rune) Result {
	i := 0
	for i < len(before) && i < len(after) && before[i] == after[i] {
		i++
	}
	return Result{Action: action, Backspaces: len(before) - i, Text: append([]rune(nil), after[i:]...)}
}
