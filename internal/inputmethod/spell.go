package inputmethod

import (
	"fmt"
	"sort"
	"strings"

	"vnkey/internal/diacritic"
	"vnkey/internal/letter"
	"vnkey/internal/syllable"
)

var telexToneKeys = map[letter.Tone]string{
	letter.ToneAcute: "s",
	letter.ToneGrave: "f",
	letter.ToneHook:  "r",
	letter.ToneTilde: "x",
	letter.ToneDot:   "j",
}

// spelling is one Telex body without the tone key.
type spelling struct {
	text       string
	nucleusEnd int
}

// spellBody writes ls as Telex keys. With mergeUO the ươ pair is typed
// as "uow" instead of "uwow".
func spellBody(ls []letter.Letter, p syllable.Parts, mergeUO bool) spelling {
	var sb strings.Builder
	nucleusEnd := -1
	for i, l := range ls {
		if i == p.VowelEnd {
			nucleusEnd = sb.Len()
		}
		sb.WriteByte(l.Base)
		switch {
		case l.Base == 'd' && l.Circumflex:
			sb.WriteByte('d')
		case l.Circumflex:
			sb.WriteByte(l.Base)
		case l.Horn:
			next := i + 1
			if mergeUO && l.Base == 'u' && next < len(ls) && ls[next].Base == 'o' && ls[next].Horn {
				continue
			}
			sb.WriteByte('w')
		}
	}
	if nucleusEnd < 0 {
		nucleusEnd = sb.Len()
	}
	return spelling{text: sb.String(), nucleusEnd: nucleusEnd}
}

// Spell returns the Telex key sequences that produce ls. The first entry
// is the canonical one, with the tone key last and ươ typed as "uow".
// Variants cover the tone typed right after the nucleus, ươ typed as
// "uwow", and closed iê/yê/uyê/uô typed without the doubled vowel when a
// tone completes it.
func Spell(ls []letter.Letter) []string {
	tone := letter.ToneNone
	bare := make([]letter.Letter, len(ls))
	for i, l := range ls {
		if l.Tone != letter.ToneNone {
			tone = l.Tone
		}
		l.Upper = false
		l.Standalone = false
		bare[i] = l.ClearTone()
	}
	p := syllable.Split(bare)

	bodies := []spelling{spellBody(bare, p, true), spellBody(bare, p, false)}
	if tone != letter.ToneNone {
		if short := withoutCompletedNucleus(bare); short != nil {
			bodies = append(bodies, spellBody(short, p, true))
		}
	}

	key := telexToneKeys[tone]
	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	for _, b := range bodies {
		add(b.text + key)
	}
	if key != "" {
		// The shortened body relies on the tone coming after the coda.
		for _, b := range bodies[:2] {
			add(b.text[:b.nucleusEnd] + key + b.text[b.nucleusEnd:])
		}
	}
	if len(out) > 1 {
		rest := out[1:]
		sort.Strings(rest)
	}
	return out
}

// withoutCompletedNucleus returns ls with the circumflex that
// diacritic.CompleteNucleus would add removed, or nil when ls does not
// end in such a nucleus.
func withoutCompletedNucleus(ls []letter.Letter) []letter.Letter {
	p := syllable.Split(ls)
	if !p.HasNucleus() || !p.HasCoda() {
		return nil
	}
	last := p.VowelEnd - 1
	if !ls[last].Circumflex {
		return nil
	}
	short := append([]letter.Letter(nil), ls...)
	short[last] = short[last].WithCircumflex(false)
	check := append([]letter.Letter(nil), short...)
	if diacritic.CompleteNucleus(check) != last {
		return nil
	}
	return short
}

// TelexSpellings parses a written Vietnamese word and returns its Telex
// key sequences, canonical first.
func TelexSpellings(word string) ([]string, error) {
	ls, err := letter.Parse(strings.ToLower(strings.TrimSpace(word)))
	if err != nil {
		return nil, err
	}
	if len(ls) == 0 {
		return nil, fmt.Errorf("empty word")
	}
	for _, l := range ls {
		if !l.IsLetter() {
			return nil, fmt.Errorf("%q: not a letter: %q", word, l.Rune())
		}
	}
	return Spell(ls), nil
}

// Canonical returns the canonical Telex spelling of ls.
func Canonical(ls []letter.Letter) string {
	return Spell(ls)[0]
}
