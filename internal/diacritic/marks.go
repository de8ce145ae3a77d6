package diacritic

import (
	"vnkey/internal/letter"
	"vnkey/internal/syllable"
)

// HornMode selects which vowels a horn trigger may mark.
type HornMode int

const (
	// HornAll marks u and o with a horn and a with a breve (Telex w).
	HornAll HornMode = iota
	// HornOnly marks u and o (VNI 7).
	HornOnly
	// BreveOnly marks a (VNI 8).
	BreveOnly
)

func (m HornMode) accepts(base byte) bool {
	switch m {
	case HornAll:
		return base == 'u' || base == 'o' || base == 'a'
	case HornOnly:
		return base == 'u' || base == 'o'
	case BreveOnly:
		return base == 'a'
	}
	return false
}

// ToggleCircumflex puts a circumflex on the rightmost nucleus vowel with
// the given base (a, e or o; 0 accepts any of them). If that vowel already
// has one, it is removed.
func ToggleCircumflex(ls []letter.Letter, base byte) Outcome {
	p := syllable.Split(ls)
	for i := p.VowelEnd - 1; i >= p.VowelStart; i-- {
		l := ls[i]
		if base != 0 && l.Base != base {
			continue
		}
		if l.Base != 'a' && l.Base != 'e' && l.Base != 'o' {
			continue
		}
		if l.Circumflex {
			ls[i] = l.WithCircumflex(false)
			return undone
		}
		ls[i] = l.WithHorn(false).WithCircumflex(true)
		// ươ + o reads as uô, not ưô.
		if l.Base == 'o' && i > p.VowelStart && ls[i-1].Base == 'u' && ls[i-1].Horn {
			ls[i-1] = ls[i-1].WithHorn(false)
		}
		return changed
	}
	return noChange
}

// hornTargets returns the nucleus offsets a horn trigger marks.
func hornTargets(nucleus []letter.Letter, mode HornMode) []int {
	bases := make([]byte, len(nucleus))
	for i, l := range nucleus {
		bases[i] = l.Base
	}
	s := string(bases)

	if mode == BreveOnly {
		for i := len(bases) - 1; i >= 0; i-- {
			if bases[i] == 'a' {
				return []int{i}
			}
		}
		return nil
	}

	for i := 0; i+1 < len(bases); i++ {
		if bases[i] == 'u' && bases[i+1] == 'o' {
			return []int{i, i + 1}
		}
	}
	if len(s) >= 2 {
		switch s[:2] {
		case "ua", "ui", "uu", "oi":
			return []int{0}
		case "io", "oa":
			if mode.accepts(bases[1]) {
				return []int{1}
			}
		}
	}
	for i, b := range bases {
		if mode.accepts(b) {
			return []int{i}
		}
	}
	return nil
}

// ToggleHorn applies a horn (or breve) to the nucleus. The vowel pair
// decides the target: uo marks both letters, ua/ui/uu/oi the first, io/oa
// the second. If every target already carries the mark, the marks are
// removed instead.
func ToggleHorn(ls []letter.Letter, mode HornMode) Outcome {
	p := syllable.Split(ls)
	if !p.HasNucleus() {
		return noChange
	}
	nucleus := ls[p.VowelStart:p.VowelEnd]
	targets := hornTargets(nucleus, mode)
	if len(targets) == 0 {
		return noChange
	}

	all := true
	for _, t := range targets {
		if !nucleus[t].Horn {
			all = false
			break
		}
	}
	for _, t := range targets {
		if all {
			nucleus[t] = nucleus[t].WithHorn(false)
		} else {
			nucleus[t] = nucleus[t].WithCircumflex(false).WithHorn(true)
		}
	}
	if all {
		return undone
	}
	return changed
}

// ToggleStroke turns an initial d into đ, or back.
func ToggleStroke(ls []letter.Letter) Outcome {
	if len(ls) == 0 || ls[0].Base != 'd' {
		return noChange
	}
	if ls[0].Circumflex {
		ls[0] = ls[0].WithCircumflex(false)
		return undone
	}
	ls[0] = ls[0].WithCircumflex(true)
	return changed
}
