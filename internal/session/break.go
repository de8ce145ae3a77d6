package session

import (
	"slices"
	"strings"

	"vnkey/internal/diacritic"
	"vnkey/internal/letter"
	"vnkey/internal/restore"
	"vnkey/internal/syllable"
)

// archived is a finished word kept so that Backspace right after the
// break can reopen it.
type archived struct {
	letters   []uint32
	slots     []slot // key sets of each letter; l is unused
	raw       []rawKey
	suspended bool

	// breaks counts break characters typed since the word ended,
	// including the one that ended it.
	breaks int
}

// Shorthand expansions applied when a word ends.
var (
	quickOnsets = map[byte]byte{'c': 'h', 'g': 'i', 'k': 'h', 'n': 'g', 'p': 'h', 'q': 'u', 't': 'h'}
	quickCodas  = map[byte][2]byte{'g': {'n', 'g'}, 'h': {'n', 'h'}, 'k': {'c', 'h'}}
)

func (s *Session) wordBreak(r rune) Result {
	if s.letters.len() == 0 {
		if s.archive != nil {
			s.archive.breaks++
		}
		s.trackSentence(r)
		return pass
	}
	res := s.finishWord()
	s.trackSentence(r)
	return res
}

// finishWord decides the fate of the current word and resets it. Macro
// expansion wins over restore, and restore over shorthand expansion.
func (s *Session) finishWord() Result {
	word := s.render()
	raw := s.rawRunes()
	slots := s.letters.all()

	if exp, ok := s.lookupMacro(word); ok {
		s.lastMacro = strings.ToLower(string(word))
		s.resetWord()
		s.archive = nil
		return Result{Action: ActionReplaceMacro, Backspaces: len(word), Text: []rune(exp), PassThrough: true}
	}

	if string(word) != string(raw) && s.opts.AutoRestore && s.restorer != nil {
		s.last = s.restorer.Decide(restore.NewWord(string(raw), s.letterSlice(), s.opts.Method))
		if s.last.Restore {
			s.archiveRaw()
			s.resetWord()
			return Result{Action: ActionRestore, Backspaces: len(word), Text: raw, PassThrough: true}
		}
	}

	res := pass
	if expanded := s.expandQuick(slots); expanded != nil {
		res = diff(ActionModify, word, letter.Runes(slotLetters(expanded)))
		res.PassThrough = true
		slots = expanded
	}
	s.archiveSlots(slots)
	s.resetWord()
	return res
}

func (s *Session) lookupMacro(word []rune) (string, bool) {
	if !s.opts.Macros || s.macros == nil {
		return "", false
	}
	return s.macros.LookupMacro(strings.ToLower(string(word)))
}

func slotLetters(slots []slot) []letter.Letter {
	out := make([]letter.Letter, len(slots))
	for i, sl := range slots {
		out[i] = sl.l
	}
	return out
}

// expandQuick applies the shorthand onsets and codas the syllable options
// allow. It returns nil when nothing changed.
func (s *Session) expandQuick(slots []slot) []slot {
	opts := s.opts.Syllable
	if !opts.QuickStartConsonant && !opts.QuickEndConsonant {
		return nil
	}
	out := append([]slot(nil), slots...)
	changed := false

	if opts.QuickStartConsonant && len(out) >= 2 {
		a, b := out[0].l, out[1].l
		if next, ok := quickOnsets[a.Base]; ok && a.Base == b.Base && !a.Marked() && !b.Marked() {
			out[1].l = letter.Letter{Base: next, Upper: b.Upper}
			changed = true
		}
	}

	if opts.QuickEndConsonant {
		p := syllable.Split(slotLetters(out))
		n := len(out)
		if p.HasNucleus() && p.CodaEnd == n && p.CodaEnd-p.VowelEnd == 1 {
			last := out[n-1]
			if pair, ok := quickCodas[last.l.Base]; ok {
				out[n-1].l = letter.Letter{Base: pair[0], Upper: last.l.Upper}
				out = append(out, slot{l: letter.Letter{Base: pair[1], Upper: last.l.Upper}, seq: last.seq, tone: slices.Clone(last.tone), marks: slices.Clone(last.marks)})
				changed = true
			}
		}
	}

	if !changed {
		return nil
	}
	ls := slotLetters(out)
	if diacritic.Reposition(ls, s.opts.Style) {
		for i := range out {
			out[i].l = ls[i]
		}
	}
	return out
}

func (s *Session) archiveSlots(slots []slot) {
	a := &archived{
		letters:   letter.PackAll(slotLetters(slots)),
		slots:     slots,
		raw:       s.raw.all(),
		suspended: s.suspended,
		breaks:    1,
	}
	s.archive = a
}

// archiveRaw archives a restored word: the letters are the raw keys.
func (s *Session) archiveRaw() {
	raw := s.raw.all()
	a := &archived{
		letters:   make([]uint32, len(raw)),
		slots:     make([]slot, len(raw)),
		raw:       raw,
		suspended: true,
		breaks:    1,
	}
	for i, k := range raw {
		a.letters[i] = letter.FromASCII(k.c, k.upper).Pack()
		a.slots[i] = slot{seq: k.seq}
	}
	s.archive = a
}

// unarchive reopens the archived word.
func (s *Session) unarchive() {
	a := s.archive
	s.archive = nil
	s.resetWord()
	for i, l := range letter.UnpackAll(a.letters) {
		sl := a.slots[i]
		sl.l = l
		s.letters.push(sl)
	}
	for _, k := range a.raw {
		s.raw.push(k)
	}
	s.suspended = a.suspended
	s.sentenceEnd = false
	s.upperNext = false
}

func (s *Session) trackSentence(r rune) {
	switch r {
	case '.', '!', '?':
		s.sentenceEnd = true
	case ' ', '\n', '\t':
		if s.sentenceEnd && s.opts.AutoCapitalize {
			s.upperNext = true
		}
	default:
		s.sentenceEnd = false
	}
}
