// Package syllable checks a typed word against Vietnamese syllable shape:
// an optional onset consonant cluster, a vowel nucleus of one to three
// letters and an optional coda.
//
// The session consults Check after every keystroke; a blocked word
// suppresses diacritic triggers so that English typing passes through.
package syllable

import (
	"strings"

	"vnkey/internal/letter"
)

// MaxNucleus is the longest legal vowel nucleus.
const MaxNucleus = 3

// Options relaxes the shape tables.
type Options struct {
	// DeepCheck validates the vowel cluster against the nucleus table.
	DeepCheck bool

	// AllowZFWJ accepts z, f, w and j as onsets.
	AllowZFWJ bool

	// QuickStartConsonant accepts doubled shorthand onsets (cc, gg, ...).
	QuickStartConsonant bool

	// QuickEndConsonant accepts shorthand codas g, h and k.
	QuickEndConsonant bool
}

// Parts locates the syllable components of a word. Indices are half-open.
type Parts struct {
	OnsetEnd   int
	VowelStart int
	VowelEnd   int
	CodaEnd    int
}

// HasNucleus reports whether the word contains a vowel.
func (p Parts) HasNucleus() bool { return p.VowelEnd > p.VowelStart }

// HasCoda reports whether consonants follow the nucleus.
func (p Parts) HasCoda() bool { return p.CodaEnd > p.VowelEnd }

// NucleusLen returns the number of vowels in the nucleus.
func (p Parts) NucleusLen() int { return p.VowelEnd - p.VowelStart }

// Split finds onset, nucleus and coda. "qu" is always a fused onset. "gi"
// keeps its i in the onset only when another vowel follows, so "gia"
// splits as gi+a while "gin" splits as g+i+n.
func Split(ls []letter.Letter) Parts {
	n := len(ls)
	i := 0
	for i < n && !ls[i].IsVowel() {
		i++
	}
	onsetEnd := i
	if i == 1 && i < n {
		first, v := ls[0], ls[i]
		switch {
		case first.Base == 'q' && v.Base == 'u' && !v.Marked():
			onsetEnd = 2
		case first.Base == 'g' && !first.Circumflex && v.Base == 'i' && i+1 < n && ls[i+1].IsVowel():
			onsetEnd = 2
		}
	}

	j := onsetEnd
	for j < n && ls[j].IsVowel() {
		j++
	}
	k := j
	for k < n && !ls[k].IsVowel() {
		k++
	}
	return Parts{OnsetEnd: onsetEnd, VowelStart: onsetEnd, VowelEnd: j, CodaEnd: k}
}

// Result is the outcome of Check.
type Result struct {
	// SyllableOK reports a legal onset/coda shape.
	SyllableOK bool

	// VowelOK reports a legal nucleus. Always true without DeepCheck.
	VowelOK bool

	// Blocked is set when either check failed.
	Blocked bool
}

// VowelOnly reports whether the nucleus is the only failing part.
func (r Result) VowelOnly() bool {
	return r.SyllableOK && !r.VowelOK
}

// Check validates ls. A trailing standalone shortcut letter is left out of
// the shape check.
func Check(ls []letter.Letter, opts Options) Result {
	if n := len(ls); n > 0 && ls[n-1].Standalone {
		ls = ls[:n-1]
	}
	p := Split(ls)
	r := Result{SyllableOK: shapeOK(ls, p, opts), VowelOK: true}
	if opts.DeepCheck && p.HasNucleus() {
		r.VowelOK = p.NucleusLen() <= MaxNucleus && IsCluster(Cluster(ls[p.VowelStart:p.VowelEnd]))
	}
	r.Blocked = !r.SyllableOK || !r.VowelOK
	return r
}

func shapeOK(ls []letter.Letter, p Parts, opts Options) bool {
	for _, l := range ls {
		if !l.IsLetter() {
			return false
		}
	}
	onset := consonants(ls[:p.OnsetEnd])
	if !p.HasNucleus() {
		return IsOnsetPrefix(onset, opts)
	}
	if !IsOnset(onset, opts) {
		return false
	}
	if p.NucleusLen() > MaxNucleus || p.CodaEnd < len(ls) {
		return false
	}
	return IsCoda(consonants(ls[p.VowelEnd:p.CodaEnd]), opts)
}

// consonants renders a consonant run in lower case. The fused "qu" onset
// keeps its u.
func consonants(ls []letter.Letter) string {
	var sb strings.Builder
	for _, l := range ls {
		if l.Base == 'd' && l.Circumflex {
			sb.WriteRune('đ')
			continue
		}
		sb.WriteByte(l.Base)
	}
	return sb.String()
}

// Cluster renders vowels in lower case without tone marks.
func Cluster(ls []letter.Letter) string {
	var sb strings.Builder
	for _, l := range ls {
		l.Upper = false
		l.Tone = letter.ToneNone
		l.Standalone = false
		sb.WriteRune(l.Rune())
	}
	return sb.String()
}
