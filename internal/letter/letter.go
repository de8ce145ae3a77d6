// Package letter defines the typed letter record: one visible character of
// the word being composed, described as a base key plus its Vietnamese
// marks.
//
// A Letter is a plain value. Mutators return a modified copy, so no partial
// state is ever observable outside a single assignment.
package letter

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Tone is one of the five Vietnamese tone marks.
type Tone uint8

const (
	ToneNone Tone = iota
	ToneAcute
	ToneGrave
	ToneHook
	ToneTilde
	ToneDot
)

var toneNames = [...]string{"none", "acute", "grave", "hook", "tilde", "dot"}

func (t Tone) String() string {
	if int(t) < len(toneNames) {
		return toneNames[t]
	}
	return fmt.Sprintf("Tone(%d)", t)
}

// Letter is a typed letter record.
type Letter struct {
	// Base is the lowercase key: a-z, a digit or ASCII punctuation.
	Base byte

	// Upper reports whether the letter renders in upper case.
	Upper bool

	// Tone is the tone mark carried by the letter.
	Tone Tone

	// Circumflex marks â, ê, ô and the stroke of đ.
	Circumflex bool

	// Horn marks ư, ơ and the breve of ă.
	Horn bool

	// Standalone is set when a shortcut key produced the whole letter
	// (Telex "w", "[" or "]") rather than a mark on a typed vowel.
	Standalone bool
}

// Encode returns the letter for alphabet index 0-25 with every mark clear.
// An index outside that range is a caller bug.
func Encode(index int, upper bool) Letter {
	if index < 0 || index >= 26 {
		panic(fmt.Sprintf("letter: index %d out of range", index))
	}
	return Letter{Base: 'a' + byte(index), Upper: upper}
}

// FromASCII returns the letter for a printable ASCII key. Letters are
// folded to lower case with upper carried in the Upper flag.
func FromASCII(c byte, upper bool) Letter {
	if c >= 'A' && c <= 'Z' {
		c += 'a' - 'A'
		upper = true
	}
	if c < 'a' || c > 'z' {
		upper = false
	}
	return Letter{Base: c, Upper: upper}
}

// Index returns the alphabet index of the base letter, or -1.
func (l Letter) Index() int {
	if !l.IsLetter() {
		return -1
	}
	return int(l.Base - 'a')
}

// IsLetter reports whether the base is a-z.
func (l Letter) IsLetter() bool {
	return l.Base >= 'a' && l.Base <= 'z'
}

// IsVowel reports whether the base is one of a e i o u y.
func (l Letter) IsVowel() bool {
	switch l.Base {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// Marked reports whether the letter carries a circumflex or horn.
func (l Letter) Marked() bool {
	return l.Circumflex || l.Horn
}

// WithTone returns l carrying tone t, replacing any previous tone.
func (l Letter) WithTone(t Tone) Letter {
	l.Tone = t
	return l
}

// ClearTone returns l without a tone mark.
func (l Letter) ClearTone() Letter {
	l.Tone = ToneNone
	return l
}

// WithCircumflex returns l with the circumflex flag set to on.
func (l Letter) WithCircumflex(on bool) Letter {
	l.Circumflex = on
	return l
}

// WithHorn returns l with the horn flag set to on.
func (l Letter) WithHorn(on bool) Letter {
	l.Horn = on
	return l
}

// Bare returns the base letter with case kept and every mark removed.
func (l Letter) Bare() Letter {
	return Letter{Base: l.Base, Upper: l.Upper}
}

// Rune renders the letter as a single precomposed rune.
func (l Letter) Rune() rune {
	if !l.IsLetter() {
		return rune(l.Base)
	}
	mark := markNone
	switch {
	case l.Circumflex:
		mark = markCircumflex
	case l.Horn:
		mark = markHorn
	}
	tone := l.Tone
	if int(tone) >= len(toneNames) {
		tone = ToneNone
	}
	r := composed[l.Base-'a'][mark][tone]
	if l.Upper {
		r = unicode.ToUpper(r)
	}
	return r
}

func (l Letter) String() string {
	return string(l.Rune())
}

const (
	markNone = iota
	markCircumflex
	markHorn
)

const (
	combiningGrave      = '\u0300'
	combiningAcute      = '\u0301'
	combiningCircumflex = '\u0302'
	combiningTilde      = '\u0303'
	combiningBreve      = '\u0306'
	combiningHook       = '\u0309'
	combiningHorn       = '\u031B'
	combiningDot        = '\u0323'
)

var toneMarks = [...]rune{0, combiningAcute, combiningGrave, combiningHook, combiningTilde, combiningDot}

// composed caches every renderable letter/mark/tone combination.
var composed [26][3][6]rune

func init() {
	for i := 0; i < 26; i++ {
		base := rune('a' + i)
		for mark := markNone; mark <= markHorn; mark++ {
			for tone := ToneNone; tone <= ToneDot; tone++ {
				composed[i][mark][tone] = compose(base, mark, tone)
			}
		}
	}
}

// compose builds one precomposed rune, dropping marks the base letter
// cannot carry.
func compose(base rune, mark int, tone Tone) rune {
	if base == 'd' {
		if mark == markCircumflex {
			return 'đ'
		}
		return 'd'
	}
	seq := []rune{base}
	switch mark {
	case markCircumflex:
		seq = append(seq, combiningCircumflex)
	case markHorn:
		if base == 'a' {
			seq = append(seq, combiningBreve)
		} else {
			seq = append(seq, combiningHorn)
		}
	}
	if tone != ToneNone {
		seq = append(seq, toneMarks[tone])
	}
	out := []rune(norm.NFC.String(string(seq)))
	if len(out) == 1 {
		return out[0]
	}
	if mark != markNone {
		return compose(base, markNone, tone)
	}
	if tone != ToneNone {
		return compose(base, markNone, ToneNone)
	}
	return base
}

// FromRune parses a rendered character back into a letter. It reports
// false for characters outside ASCII and the Vietnamese alphabet.
func FromRune(r rune) (Letter, bool) {
	switch r {
	case 'đ':
		return Letter{Base: 'd', Circumflex: true}, true
	case 'Đ':
		return Letter{Base: 'd', Circumflex: true, Upper: true}, true
	}
	upper := unicode.IsUpper(r)
	parts := []rune(norm.NFD.String(string(unicode.ToLower(r))))
	if len(parts) == 0 || parts[0] > unicode.MaxASCII || !unicode.IsPrint(parts[0]) {
		return Letter{}, false
	}
	l := FromASCII(byte(parts[0]), upper)
	for _, m := range parts[1:] {
		switch m {
		case combiningCircumflex:
			l.Circumflex = true
		case combiningHorn, combiningBreve:
			l.Horn = true
		case combiningAcute:
			l.Tone = ToneAcute
		case combiningGrave:
			l.Tone = ToneGrave
		case combiningHook:
			l.Tone = ToneHook
		case combiningTilde:
			l.Tone = ToneTilde
		case combiningDot:
			l.Tone = ToneDot
		default:
			return Letter{}, false
		}
	}
	if l.Rune() != r {
		return Letter{}, false
	}
	return l, true
}

// Parse converts a rendered word into letters.
func Parse(word string) ([]Letter, error) {
	out := make([]Letter, 0, len(word))
	for _, r := range norm.NFC.String(word) {
		l, ok := FromRune(r)
		if !ok {
			return nil, fmt.Errorf("letter: unsupported character %q in %q", r, word)
		}
		out = append(out, l)
	}
	return out, nil
}

// Render joins letters into their display string.
func Render(letters []Letter) string {
	var sb strings.Builder
	for _, l := range letters {
		sb.WriteRune(l.Rune())
	}
	return sb.String()
}

// Runes renders letters as a rune slice.
func Runes(letters []Letter) []rune {
	out := make([]rune, len(letters))
	for i, l := range letters {
		out[i] = l.Rune()
	}
	return out
}

// Fold returns the lowercase base keys of letters with all marks dropped.
func Fold(letters []Letter) string {
	b := make([]byte, len(letters))
	for i, l := range letters {
		b[i] = l.Base
	}
	return string(b)
}

// HasTone reports whether any letter carries a tone mark.
func HasTone(letters []Letter) bool {
	for _, l := range letters {
		if l.Tone != ToneNone {
			return true
		}
	}
	return false
}
