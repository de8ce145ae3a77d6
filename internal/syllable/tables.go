package syllable

import (
	"vnkey/internal/letter"
)

// Legal onsets. The empty onset is always legal.
var onsets = []string{
	"b", "c", "ch", "d", "đ", "g", "gh", "gi", "h", "k", "kh", "l", "m",
	"n", "ng", "ngh", "nh", "p", "ph", "qu", "r", "s", "t", "th", "tr",
	"v", "x",
}

// Loanword onsets enabled by Options.AllowZFWJ.
var foreignOnsets = []string{"z", "f", "w", "j"}

// Doubled shorthand onsets enabled by Options.QuickStartConsonant.
var quickOnsets = []string{"cc", "gg", "kk", "nn", "pp", "qq", "tt"}

// Legal codas.
var codas = []string{"c", "ch", "m", "n", "ng", "nh", "p", "t"}

// Shorthand codas enabled by Options.QuickEndConsonant.
var quickCodas = []string{"g", "h", "k"}

// Vowel clusters in their finished written form, grouped by leading vowel.
var nuclei = map[rune][]string{
	'a': {"a", "ai", "ao", "au", "ay"},
	'ă': {"ă"},
	'â': {"â", "âu", "ây"},
	'e': {"e", "eo"},
	'ê': {"ê", "êu"},
	'i': {"i", "ia", "iu", "iê", "iêu"},
	'o': {"o", "oa", "oă", "oe", "oi", "oo", "oai", "oao", "oay", "oeo"},
	'ô': {"ô", "ôi"},
	'ơ': {"ơ", "ơi"},
	'u': {"u", "ua", "uâ", "uê", "ui", "uô", "uơ", "uy", "uây", "uôi", "uya", "uyê", "uyu"},
	'ư': {"ư", "ưa", "ưi", "ưu", "ươ", "ươi", "ươu"},
	'y': {"y", "yê", "yêu"},
}

var (
	onsetSet, onsetPrefixes               map[string]bool
	foreignOnsetSet, foreignOnsetPrefixes map[string]bool
	quickOnsetSet, quickOnsetPrefixes     map[string]bool
	codaSet, quickCodaSet                 map[string]bool

	// clusterSet holds every finished cluster plus its fully bare typing
	// form, e.g. both "ươ" and "uo".
	clusterSet map[string]bool
)

func init() {
	onsetSet, onsetPrefixes = withPrefixes(onsets)
	foreignOnsetSet, foreignOnsetPrefixes = withPrefixes(foreignOnsets)
	quickOnsetSet, quickOnsetPrefixes = withPrefixes(quickOnsets)
	codaSet, _ = withPrefixes(codas)
	quickCodaSet, _ = withPrefixes(quickCodas)

	clusterSet = make(map[string]bool)
	for _, group := range nuclei {
		for _, cluster := range group {
			clusterSet[cluster] = true
			letters, err := letter.Parse(cluster)
			if err != nil {
				panic(err)
			}
			bare := make([]letter.Letter, len(letters))
			for i, l := range letters {
				bare[i] = l.Bare()
			}
			clusterSet[letter.Render(bare)] = true
		}
	}
}

func withPrefixes(words []string) (set, prefixes map[string]bool) {
	set = make(map[string]bool, len(words))
	prefixes = make(map[string]bool, len(words)*2)
	for _, w := range words {
		set[w] = true
		r := []rune(w)
		for i := 1; i <= len(r); i++ {
			prefixes[string(r[:i])] = true
		}
	}
	return set, prefixes
}

// IsOnset reports whether s is a legal onset under opts.
func IsOnset(s string, opts Options) bool {
	switch {
	case s == "" || onsetSet[s]:
		return true
	case opts.AllowZFWJ && foreignOnsetSet[s]:
		return true
	case opts.QuickStartConsonant && quickOnsetSet[s]:
		return true
	}
	return false
}

// IsOnsetPrefix reports whether s can still grow into a legal onset.
func IsOnsetPrefix(s string, opts Options) bool {
	switch {
	case s == "" || onsetPrefixes[s]:
		return true
	case opts.AllowZFWJ && foreignOnsetPrefixes[s]:
		return true
	case opts.QuickStartConsonant && quickOnsetPrefixes[s]:
		return true
	}
	return false
}

// IsCoda reports whether s is a legal coda under opts.
func IsCoda(s string, opts Options) bool {
	return s == "" || codaSet[s] || opts.QuickEndConsonant && quickCodaSet[s]
}

// IsCluster reports whether the rendered, toneless vowel cluster s is
// legal.
func IsCluster(s string) bool {
	return clusterSet[s]
}
