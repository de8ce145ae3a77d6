// Package session runs the per-word state machine: it owns the letters of
// the word being typed and the raw keys behind them, applies diacritic
// triggers as keys arrive and decides what happens at a word break.
//
// A Session is not safe for concurrent use. Callers serialize key presses
// (see ime.Engine).
package session

import (
	"slices"

	"vnkey/internal/diacritic"
	"vnkey/internal/inputmethod"
	"vnkey/internal/letter"
	"vnkey/internal/restore"
	"vnkey/internal/syllable"
)

// Options controls transformation behaviour.
type Options struct {
	Method inputmethod.Method
	Style  diacritic.Style

	// SpellCheck suppresses diacritic triggers on words the syllable
	// validator blocks.
	SpellCheck bool
	Syllable   syllable.Options

	// AutoCircumflex completes closed ie/ye/uye/uo nuclei when a tone is
	// typed (vietj → việt).
	AutoCircumflex bool

	// AutoRestore consults the restorer at word breaks.
	AutoRestore bool

	// RestoreOnEscape makes Escape put back the typed keys.
	RestoreOnEscape bool

	// AutoCapitalize upper-cases the first letter after . ! or ?.
	AutoCapitalize bool

	// Macros enables macro expansion at word breaks.
	Macros bool
}

// DefaultOptions returns the options a fresh install uses.
func DefaultOptions() Options {
	return Options{
		Method:         inputmethod.Telex,
		Style:          diacritic.StyleModern,
		SpellCheck:     true,
		Syllable:       syllable.Options{DeepCheck: true},
		AutoCircumflex: true,
		AutoRestore:    true,
		Macros:         true,
	}
}

// Restorer decides whether a finished word goes back to its raw keys.
// *restore.Pipeline implements it.
type Restorer interface {
	Decide(w restore.Word) restore.Verdict
}

// MacroLookup maps a lower-case word to its expansion.
type MacroLookup interface {
	LookupMacro(word string) (string, bool)
}

// MacroTable is an in-memory MacroLookup.
type MacroTable map[string]string

// LookupMacro implements MacroLookup.
func (m MacroTable) LookupMacro(word string) (string, bool) {
	v, ok := m[word]
	return v, ok
}

// slot is one letter of the word and the sequence numbers of the keys
// behind it: the key that typed it plus the trigger keys that marked it.
type slot struct {
	l     letter.Letter
	seq   int
	tone  []int
	marks []int
}

func (sl slot) keys() []int {
	out := make([]int, 0, 1+len(sl.tone)+len(sl.marks))
	out = append(out, sl.seq)
	out = append(out, sl.tone...)
	return append(out, sl.marks...)
}

// rawKey is one untransformed key press of the word.
type rawKey struct {
	c     byte
	upper bool
	seq   int
}

func (k rawKey) rune() rune {
	if k.upper && k.c >= 'a' && k.c <= 'z' {
		return rune(k.c - 'a' + 'A')
	}
	return rune(k.c)
}

// Session is the word state machine.
type Session struct {
	opts     Options
	restorer Restorer
	macros   MacroLookup

	letters bounded[slot]
	raw     bounded[rawKey]
	seq     int

	// suspended is set after a trigger undid its own mark; later keys of
	// the word are taken literally.
	suspended bool

	// autoCirc is the letter CompleteNucleus marked, or -1.
	autoCirc int

	// hornSnap holds the letters before the last horn trigger.
	hornSnap []letter.Letter

	upperNext   bool
	sentenceEnd bool

	archive *archived
	last    restore.Verdict

	// lastMacro is the key of the most recent macro expansion.
	lastMacro string
}

// New returns an empty session. restorer and macros may be nil.
func New(opts Options, restorer Restorer, macros MacroLookup) *Session {
	return &Session{
		opts:     opts,
		restorer: restorer,
		macros:   macros,
		letters:  newBounded[slot](MaxWindow),
		raw:      newBounded[rawKey](MaxWindow),
		autoCirc: -1,
	}
}

// Options returns the current options.
func (s *Session) Options() Options { return s.opts }

// SetOptions replaces the options. The current word is dropped.
func (s *Session) SetOptions(opts Options) {
	s.opts = opts
	s.resetWord()
}

// SetMacros replaces the macro source.
func (s *Session) SetMacros(m MacroLookup) { s.macros = m }

// SetRestorer replaces the restore decision source.
func (s *Session) SetRestorer(r Restorer) { s.restorer = r }

// LastVerdict returns the restore verdict of the most recent word break
// that consulted the restorer.
func (s *Session) LastVerdict() restore.Verdict { return s.last }

// LastMacro returns the key of the most recent macro expansion.
func (s *Session) LastMacro() string { return s.lastMacro }

// Word returns the current word as rendered.
func (s *Session) Word() string { return string(s.render()) }

// RawKeys returns the keys typed for the current word.
func (s *Session) RawKeys() string { return string(s.rawRunes()) }

// Spilled reports how many letters have left the edit window.
func (s *Session) Spilled() int { return s.letters.spilled() }

// StartNewSession forgets the current word and all history, as after a
// focus change.
func (s *Session) StartNewSession() {
	s.resetWord()
	s.archive = nil
	s.upperNext = false
	s.sentenceEnd = false
}

// PrimeUpperCaseFirstChar makes the next word start with a capital.
func (s *Session) PrimeUpperCaseFirstChar() {
	s.upperNext = true
}

// RestoreToRawKeys replaces the current word with its typed keys and ends
// the word. It reports false when there is no word.
func (s *Session) RestoreToRawKeys() (Result, bool) {
	if s.letters.len() == 0 {
		return Result{}, false
	}
	res := Result{
		Action:     ActionRestoreAndReset,
		Backspaces: s.letters.len(),
		Text:       s.rawRunes(),
	}
	s.resetWord()
	s.archive = nil
	return res, true
}

// HandleKey processes one key press.
func (s *Session) HandleKey(k Key) Result {
	if k.isCombo() {
		s.StartNewSession()
		return pass
	}
	switch k.Code {
	case KeyChar:
		r, upper := k.effective()
		if r < 0x80 && s.opts.Method.IsWordKey(byte(r)) {
			return s.wordKey(byte(r), upper)
		}
		return s.wordBreak(r)
	case KeySpace:
		return s.wordBreak(' ')
	case KeyEnter:
		return s.wordBreak('\n')
	case KeyTab:
		return s.wordBreak('\t')
	case KeyBackspace:
		return s.backspace()
	case KeyEscape:
		if s.opts.RestoreOnEscape {
			if res, ok := s.RestoreToRawKeys(); ok {
				return res
			}
		}
		s.StartNewSession()
		return pass
	default:
		s.StartNewSession()
		return pass
	}
}

func (s *Session) letterSlice() []letter.Letter {
	return slotLetters(s.letters.all())
}

// store writes ls back over the existing slots. ls must not be longer.
// When the tone moved to another letter its keys move with it.
func (s *Session) store(ls []letter.Letter) {
	var lost []int
	gained := -1
	for i, l := range ls {
		sl := s.letters.at(i)
		switch {
		case sl.l.Tone != letter.ToneNone && l.Tone == letter.ToneNone:
			lost = append(lost, i)
		case sl.l.Tone == letter.ToneNone && l.Tone != letter.ToneNone:
			gained = i
		}
		sl.l = l
		s.letters.set(i, sl)
	}
	if gained < 0 {
		return
	}
	to := s.letters.at(gained)
	for _, i := range lost {
		from := s.letters.at(i)
		to.tone = append(slices.Clip(to.tone), from.tone...)
		from.tone = nil
		s.letters.set(i, from)
	}
	s.letters.set(gained, to)
}

// attribute records trigger key seq on the letters it changed. prev is
// the word before the trigger. When the trigger also added a letter it
// undid its own mark, so the keys of that mark go to the new letter.
func (s *Session) attribute(prev []letter.Letter, seq int) {
	pushed := s.letters.len() > len(prev)
	var moved slot
	for i, was := range prev {
		sl := s.letters.at(i)
		if sl.l == was {
			continue
		}
		toneChanged := sl.l.Tone != was.Tone
		switch {
		case pushed && toneChanged:
			moved.tone = append(moved.tone, sl.tone...)
			sl.tone = nil
		case pushed:
			moved.marks = append(moved.marks, sl.marks...)
			sl.marks = nil
		case toneChanged:
			sl.tone = append(slices.Clip(sl.tone), seq)
		default:
			sl.marks = append(slices.Clip(sl.marks), seq)
		}
		s.letters.set(i, sl)
	}
	if pushed {
		last := s.letters.len() - 1
		sl := s.letters.at(last)
		sl.tone = append(sl.tone, moved.tone...)
		sl.marks = append(sl.marks, moved.marks...)
		s.letters.set(last, sl)
	}
}

func (s *Session) render() []rune {
	return letter.Runes(s.letterSlice())
}

func (s *Session) rawRunes() []rune {
	keys := s.raw.all()
	out := make([]rune, len(keys))
	for i, k := range keys {
		out[i] = k.rune()
	}
	return out
}

func (s *Session) pushRaw(c byte, upper bool) int {
	s.seq++
	s.raw.push(rawKey{c: c, upper: upper, seq: s.seq})
	return s.seq
}

func (s *Session) pushLetter(l letter.Letter, seq int) {
	s.letters.push(slot{l: l, seq: seq})
}

func (s *Session) resetWord() {
	s.letters.reset()
	s.raw.reset()
	s.suspended = false
	s.autoCirc = -1
	s.hornSnap = nil
}

func (s *Session) check(ls []letter.Letter) syllable.Result {
	return syllable.Check(ls, s.opts.Syllable)
}

// wordKey handles a key that continues the word.
func (s *Session) wordKey(c byte, typedUpper bool) Result {
	upper := typedUpper
	if s.letters.len() == 0 {
		s.archive = nil
		if s.upperNext {
			upper = true
		}
		s.upperNext = false
		s.sentenceEnd = false
	}

	before := s.render()
	seq := s.pushRaw(c, upper)

	if !s.suspended {
		if t, ok := s.opts.Method.Trigger(c); ok {
			if res, handled := s.trigger(t, c, upper, seq, before); handled {
				return res
			}
		}
	}

	s.pushLetter(letter.FromASCII(c, upper), seq)
	ls := s.letterSlice()
	if diacritic.Reposition(ls, s.opts.Style) {
		s.store(ls)
	}

	typed := rune(c)
	if typedUpper && c >= 'a' && c <= 'z' {
		typed = rune(c - 'a' + 'A')
	}
	after := s.render()
	if string(after) == string(before)+string(typed) {
		return pass
	}
	return diff(ActionModify, before, after)
}

// appendLiteral adds the trigger key itself as a letter and stops further
// triggers for the word.
func (s *Session) appendLiteral(c byte, upper bool, seq int) {
	s.pushLetter(letter.FromASCII(c, upper), seq)
	s.suspended = true
}

// trigger applies t. It reports false when the key should be treated as
// an ordinary letter instead.
func (s *Session) trigger(t inputmethod.Trigger, c byte, upper bool, seq int, before []rune) (Result, bool) {
	ls := s.letterSlice()
	prev := slices.Clone(ls)
	style := s.opts.Style
	chk := s.check(ls)
	blocked := s.opts.SpellCheck && chk.Blocked
	repairable := blocked && chk.VowelOnly()

	switch t.Action {
	case inputmethod.ActionTone:
		undo := tonedWith(ls, t.Tone)
		if blocked && !undo {
			return Result{}, false
		}
		out := diacritic.ApplyTone(ls, t.Tone, style)
		if !out.Changed {
			return Result{}, false
		}
		if out.Undone {
			s.revertAutoCircumflex(ls)
			s.store(ls)
			s.appendLiteral(c, upper, seq)
			break
		}
		if s.opts.AutoCircumflex && s.autoCirc < 0 {
			if i := diacritic.CompleteNucleus(ls); i >= 0 {
				s.autoCirc = i
				diacritic.Reposition(ls, style)
			}
		}
		s.store(ls)

	case inputmethod.ActionRemoveTone:
		out := diacritic.RemoveTone(ls)
		if !out.Changed {
			return Result{}, false
		}
		s.revertAutoCircumflex(ls)
		s.store(ls)

	case inputmethod.ActionCircumflex:
		if blocked && !repairable {
			return Result{}, false
		}
		out := diacritic.ToggleCircumflex(ls, t.Base)
		if !out.Changed {
			return Result{}, false
		}
		s.autoCirc = -1
		diacritic.Reposition(ls, style)
		s.store(ls)
		if out.Undone {
			s.appendLiteral(c, upper, seq)
		}

	case inputmethod.ActionHorn:
		if n := len(ls); t.StandaloneW && n > 0 && ls[n-1].Standalone && ls[n-1] == withCase(t.Letter, ls[n-1].Upper) {
			// ww: the shortcut ư goes back to a plain w.
			last := s.letters.len() - 1
			sl := s.letters.at(last)
			sl.l = letter.FromASCII(c, sl.l.Upper)
			s.letters.set(last, sl)
			s.suspended = true
			break
		}
		if blocked && !repairable {
			return Result{}, false
		}
		snap := append([]letter.Letter(nil), ls...)
		out := diacritic.ToggleHorn(ls, t.Horn)
		if !out.Changed {
			if !t.StandaloneW || blocked {
				return Result{}, false
			}
			s.pushLetter(withCase(t.Letter, upper), seq)
			break
		}
		if out.Undone {
			s.restoreHornSnapshot(ls)
			s.store(ls)
			s.appendLiteral(c, upper, seq)
			break
		}
		s.hornSnap = snap
		s.autoCirc = -1
		diacritic.Reposition(ls, style)
		s.store(ls)

	case inputmethod.ActionStroke:
		if blocked {
			return Result{}, false
		}
		out := diacritic.ToggleStroke(ls)
		if !out.Changed {
			return Result{}, false
		}
		s.store(ls)
		if out.Undone {
			s.appendLiteral(c, upper, seq)
		}

	case inputmethod.ActionStandalone:
		if blocked {
			return Result{}, false
		}
		s.pushLetter(withCase(t.Letter, upper), seq)

	default:
		return Result{}, false
	}
	s.attribute(prev, seq)
	return diff(ActionModify, before, s.render()), true
}

// dropKeys removes the raw keys in seqs that no letter references.
func (s *Session) dropKeys(seqs []int) {
	used := make(map[int]bool)
	for _, sl := range s.letters.all() {
		for _, k := range sl.keys() {
			used[k] = true
		}
	}
	for i := s.raw.len() - 1; i >= 0; i-- {
		k := s.raw.at(i).seq
		if slices.Contains(seqs, k) && !used[k] {
			s.raw.removeAt(i)
		}
	}
}

func withCase(l letter.Letter, upper bool) letter.Letter {
	l.Upper = upper
	return l
}

func tonedWith(ls []letter.Letter, t letter.Tone) bool {
	for _, l := range ls {
		if l.Tone == t {
			return true
		}
	}
	return false
}

func (s *Session) revertAutoCircumflex(ls []letter.Letter) {
	if s.autoCirc >= 0 && s.autoCirc < len(ls) {
		ls[s.autoCirc] = ls[s.autoCirc].WithCircumflex(false)
	}
	s.autoCirc = -1
}

// restoreHornSnapshot puts back the vowel marks the last horn trigger
// replaced, so ưo → ươ → ưo rather than uo.
func (s *Session) restoreHornSnapshot(ls []letter.Letter) {
	for i := 0; i < len(ls) && i < len(s.hornSnap); i++ {
		if ls[i].Base != s.hornSnap[i].Base {
			break
		}
		ls[i].Horn = s.hornSnap[i].Horn
		ls[i].Circumflex = s.hornSnap[i].Circumflex
	}
	s.hornSnap = nil
}

// backspace removes the last letter and every key behind it that no
// remaining letter still needs.
func (s *Session) backspace() Result {
	if s.letters.len() == 0 {
		if s.archive != nil && s.archive.breaks == 1 {
			s.unarchive()
		} else {
			s.archive = nil
		}
		return pass
	}

	before := s.render()
	removed, _ := s.letters.pop()
	s.dropKeys(removed.keys())
	s.autoCirc = -1
	s.hornSnap = nil
	if s.letters.len() == 0 {
		s.resetWord()
		return pass
	}

	ls := s.letterSlice()
	if diacritic.Reposition(ls, s.opts.Style) {
		s.store(ls)
	}
	after := s.render()
	if string(after) == string(before[:len(before)-1]) {
		return pass
	}
	return diff(ActionModify, before, after)
}
