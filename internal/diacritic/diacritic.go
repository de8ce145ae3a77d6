// Package diacritic places tone marks and vowel diacritics on a word.
//
// Every function edits the letters in place and reports what happened.
// Callers compare the rendered word before and after to build the minimal
// edit they hand to the injector.
package diacritic

import (
	"fmt"
	"strings"

	"vnkey/internal/letter"
	"vnkey/internal/syllable"
)

// Style selects the tone placement convention for open two-vowel nuclei.
type Style int

const (
	// StyleModern marks the second vowel of oa, oe and uy (hoà, khoẻ, thuý).
	StyleModern Style = iota
	// StyleClassical marks the first vowel (hòa, khỏe, thúy).
	StyleClassical
)

func (s Style) String() string {
	if s == StyleClassical {
		return "classical"
	}
	return "modern"
}

// ParseStyle maps a configuration value to a Style. Empty means modern.
func ParseStyle(s string) (Style, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "modern", "new", "":
		return StyleModern, nil
	case "classical", "old":
		return StyleClassical, nil
	}
	return StyleModern, fmt.Errorf("unknown tone style %q", s)
}

// Outcome reports the effect of one operation.
type Outcome struct {
	// Changed is false when the operation found nothing to act on.
	Changed bool

	// Undone is set when a repeated trigger removed the mark it would
	// have placed.
	Undone bool
}

var (
	noChange = Outcome{}
	changed  = Outcome{Changed: true}
	undone   = Outcome{Changed: true, Undone: true}
)

// ToneTarget returns the index of the vowel that should carry a tone, or
// -1 when the word has no nucleus.
func ToneTarget(ls []letter.Letter, style Style) int {
	p := syllable.Split(ls)
	if !p.HasNucleus() {
		return -1
	}
	vs, n := p.VowelStart, p.NucleusLen()
	if n == 1 {
		return vs
	}

	// A vowel carrying a circumflex or horn always wins; in ươ it is the ơ.
	marked := -1
	for i := vs; i < p.VowelEnd; i++ {
		if ls[i].Marked() {
			marked = i
		}
	}
	if marked >= 0 {
		return marked
	}

	if n >= 3 || p.HasCoda() {
		return vs + 1
	}
	if style == StyleModern {
		switch syllable.Cluster(ls[vs:p.VowelEnd]) {
		case "oa", "oe", "uy":
			return vs + 1
		}
	}
	return vs
}

func tonedIndex(ls []letter.Letter) int {
	for i, l := range ls {
		if l.Tone != letter.ToneNone {
			return i
		}
	}
	return -1
}

// ApplyTone puts tone on the word. Applying the tone the word already
// carries removes it instead.
func ApplyTone(ls []letter.Letter, tone letter.Tone, style Style) Outcome {
	target := ToneTarget(ls, style)
	if target < 0 {
		return noChange
	}
	current := tonedIndex(ls)
	if current >= 0 {
		if ls[current].Tone == tone {
			ls[current] = ls[current].ClearTone()
			return undone
		}
		ls[current] = ls[current].ClearTone()
	}
	ls[target] = ls[target].WithTone(tone)
	return changed
}

// RemoveTone clears the word's tone mark.
func RemoveTone(ls []letter.Letter) Outcome {
	current := tonedIndex(ls)
	if current < 0 {
		return noChange
	}
	ls[current] = ls[current].ClearTone()
	return changed
}

// Reposition moves an existing tone to the vowel that should carry it
// after the word changed shape. It reports whether anything moved.
func Reposition(ls []letter.Letter, style Style) bool {
	current := tonedIndex(ls)
	if current < 0 {
		return false
	}
	target := ToneTarget(ls, style)
	if target < 0 || target == current {
		return false
	}
	tone := ls[current].Tone
	ls[current] = ls[current].ClearTone()
	ls[target] = ls[target].WithTone(tone)
	return true
}

// CompleteNucleus adds the circumflex a closed ie, ye, uye or uo nucleus
// requires in writing (viet → viêt, muon → muôn). It returns the index it
// marked, or -1.
func CompleteNucleus(ls []letter.Letter) int {
	p := syllable.Split(ls)
	if !p.HasNucleus() || !p.HasCoda() {
		return -1
	}
	nucleus := ls[p.VowelStart:p.VowelEnd]
	for _, l := range nucleus {
		if l.Marked() {
			return -1
		}
	}
	switch syllable.Cluster(nucleus) {
	case "ie", "ye", "uye", "uo":
		i := p.VowelEnd - 1
		ls[i] = ls[i].WithCircumflex(true)
		return i
	}
	return -1
}
