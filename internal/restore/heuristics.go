package restore

import (
	"strings"

	"vnkey/internal/inputmethod"
)

// foreignClusters open English words and never a Vietnamese syllable.
// Longer clusters come first.
var foreignClusters = []string{
	"thr", "scr", "spr", "str", "squ", "sch", "shr",
	"bl", "br", "cl", "cr", "dr", "fl", "fr", "gl", "gr", "pl", "pr",
	"sc", "sk", "sl", "sm", "sn", "sp", "st", "sw", "tw", "wr",
}

// HasForeignOnset reports whether raw starts with a consonant cluster or
// letter that cannot open a Vietnamese syllable.
func HasForeignOnset(raw string) bool {
	if raw == "" {
		return false
	}
	switch raw[0] {
	case 'f', 'j', 'w', 'z':
		return true
	}
	for _, c := range foreignClusters {
		if strings.HasPrefix(raw, c) {
			return true
		}
	}
	return false
}

func isVowelKey(c byte) bool {
	switch c {
	case 'a', 'e', 'i', 'o', 'u', 'y':
		return true
	}
	return false
}

// HasToneCollision reports whether a tone key follows a vowel somewhere
// before the last key. Vietnamese puts tone keys after the whole syllable
// or right after its nucleus, and a tone key is never followed by more
// vowels.
func HasToneCollision(raw string, m inputmethod.Method) bool {
	tones := m.ToneKeys()
	for i := 1; i < len(raw)-1; i++ {
		if !isVowelKey(raw[i-1]) || strings.IndexByte(tones, raw[i]) < 0 {
			continue
		}
		if isVowelKey(raw[i+1]) {
			return true
		}
	}
	return false
}

type suffixRule struct {
	suffix      string
	replacement []string
}

// suffixRules are tried in order; derivational forms before inflections.
var suffixRules = []suffixRule{
	{"ability", []string{"able"}},
	{"ibility", []string{"ible"}},
	{"ing", []string{"", "e"}},
	{"ers", []string{"", "e"}},
	{"er", []string{"", "e"}},
	{"ed", []string{"", "e"}},
	{"es", []string{""}},
	{"s", []string{""}},
}

// SuffixStems returns the candidate base forms of raw, one per matching
// suffix rule and replacement. Stems shorter than two letters are skipped.
func SuffixStems(raw string) []string {
	var out []string
	for _, r := range suffixRules {
		if !strings.HasSuffix(raw, r.suffix) {
			continue
		}
		stem := raw[:len(raw)-len(r.suffix)]
		if len(stem) < 2 {
			continue
		}
		for _, rep := range r.replacement {
			out = append(out, stem+rep)
		}
	}
	return out
}
