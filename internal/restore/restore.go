// Package restore decides at a word break whether the Vietnamese
// transformation should be thrown away in favour of the literal keys.
//
// The decision is an ordered list of named steps. The first step that
// reaches a verdict wins; the last step always does.
package restore

import (
	"strings"

	"vnkey/internal/inputmethod"
	"vnkey/internal/letter"
)

// Step names, in evaluation order.
const (
	StepCustomVietnamese     = "custom-vietnamese"
	StepCustomEnglish        = "custom-english"
	StepVietnameseDictionary = "vietnamese-dictionary"
	StepForeignOnset         = "foreign-onset"
	StepToneStrippedEnglish  = "tone-stripped-english"
	StepToneCollision        = "tone-collision"
	StepEnglishDictionary    = "english-dictionary"
)

// Lexicon answers word membership. *trie.Dictionary satisfies it.
type Lexicon interface {
	Contains(word string) bool
}

// Overlay is the user's custom word list. *customdict.Overlay satisfies it.
type Overlay interface {
	ContainsEnglish(word string) bool
	ContainsVietnamese(word string) bool
}

// Word is a finished word as seen at the break.
type Word struct {
	// Raw is the keys as typed, lower case.
	Raw string

	// Letters is the transformed word.
	Letters []letter.Letter

	// Method produced Letters from Raw.
	Method inputmethod.Method
}

// NewWord builds a Word, folding raw to lower case.
func NewWord(raw string, letters []letter.Letter, m inputmethod.Method) Word {
	return Word{Raw: strings.ToLower(raw), Letters: letters, Method: m}
}

func (w Word) rendered() string {
	return strings.ToLower(letter.Render(w.Letters))
}

// Verdict is the pipeline outcome.
type Verdict struct {
	Restore bool

	// Step names the step that decided.
	Step string
}

// Pipeline holds the evidence sources. A nil source knows no words.
type Pipeline struct {
	English    Lexicon
	Vietnamese Lexicon
	Custom     Overlay
}

type step struct {
	name string
	// decide reports matched=false to fall through to the next step.
	decide func(p *Pipeline, w Word) (restore, matched bool)
}

var steps = []step{
	{StepCustomVietnamese, (*Pipeline).customVietnamese},
	{StepCustomEnglish, (*Pipeline).customEnglish},
	{StepVietnameseDictionary, (*Pipeline).vietnameseDictionary},
	{StepForeignOnset, (*Pipeline).foreignOnset},
	{StepToneStrippedEnglish, (*Pipeline).toneStrippedEnglish},
	{StepToneCollision, (*Pipeline).toneCollision},
	{StepEnglishDictionary, (*Pipeline).englishDictionary},
}

// Steps returns the step names in evaluation order.
func Steps() []string {
	out := make([]string, len(steps))
	for i, s := range steps {
		out[i] = s.name
	}
	return out
}

// Decide runs the steps against w. It does not modify w.
func (p *Pipeline) Decide(w Word) Verdict {
	for _, s := range steps {
		if restore, ok := s.decide(p, w); ok {
			return Verdict{Restore: restore, Step: s.name}
		}
	}
	return Verdict{}
}

func (p *Pipeline) en(word string) bool {
	return p.English != nil && p.English.Contains(word)
}

func (p *Pipeline) vi(word string) bool {
	return p.Vietnamese != nil && p.Vietnamese.Contains(word)
}

func (p *Pipeline) customVietnamese(w Word) (bool, bool) {
	if p.Custom == nil {
		return false, false
	}
	if p.Custom.ContainsVietnamese(w.Raw) || p.Custom.ContainsVietnamese(w.rendered()) {
		return false, true
	}
	return false, false
}

func (p *Pipeline) customEnglish(w Word) (bool, bool) {
	if p.Custom != nil && p.Custom.ContainsEnglish(w.Raw) {
		return true, true
	}
	return false, false
}

// vietnameseDictionary matches the Telex spelling of the word against the
// Vietnamese trie, which stores Telex key sequences. Telex input is
// checked as typed as well as canonically spelled.
func (p *Pipeline) vietnameseDictionary(w Word) (bool, bool) {
	if w.Method != inputmethod.VNI && p.vi(w.Raw) {
		return false, true
	}
	if len(w.Letters) > 0 && p.vi(inputmethod.Canonical(w.Letters)) {
		return false, true
	}
	return false, false
}

func (p *Pipeline) foreignOnset(w Word) (bool, bool) {
	if !HasForeignOnset(w.Raw) {
		return false, false
	}
	return p.en(w.Raw), true
}

func (p *Pipeline) toneStrippedEnglish(w Word) (bool, bool) {
	if !letter.HasTone(w.Letters) || p.en(w.Raw) {
		return false, false
	}
	folded := letter.Fold(w.Letters)
	if folded == w.Raw {
		return false, false
	}
	if p.en(folded) && !p.vi(folded) {
		return true, true
	}
	return false, false
}

func (p *Pipeline) toneCollision(w Word) (bool, bool) {
	if !HasToneCollision(w.Raw, w.Method) {
		return false, false
	}
	for _, stem := range SuffixStems(w.Raw) {
		if p.en(stem) {
			return true, true
		}
	}
	return false, false
}

func (p *Pipeline) englishDictionary(w Word) (bool, bool) {
	return p.en(w.Raw), true
}
