package restore

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnkey/internal/customdict"
	"vnkey/internal/inputmethod"
	"vnkey/internal/letter"
	"vnkey/internal/trie"
)

func dict(t *testing.T, words ...string) *trie.Dictionary {
	t.Helper()
	b := trie.NewBuilder()
	for _, w := range words {
		require.NoError(t, b.Add(w))
	}
	return b.Build()
}

func word(t *testing.T, raw, rendered string, m inputmethod.Method) Word {
	t.Helper()
	ls, err := letter.Parse(rendered)
	require.NoError(t, err)
	return NewWord(raw, ls, m)
}

func pipeline(t *testing.T, custom string) *Pipeline {
	t.Helper()
	o := customdict.New()
	require.NoError(t, o.Load([]byte(custom)))
	return &Pipeline{
		English:    dict(t, "thesis", "blue", "tax", "mix", "use", "case", "disable", "wifi", "coffee"),
		Vietnamese: dict(t, "vieetj", "vietj", "tax", "cas"),
		Custom:     o,
	}
}

func TestDecide(t *testing.T) {
	p := pipeline(t, `[
		{"word": "mix", "type": "vi"},
		{"word": "Kaf", "type": "english"}
	]`)

	tests := []struct {
		name    string
		w       Word
		restore bool
		step    string
	}{
		{"english word", word(t, "thesis", "théis", inputmethod.Telex), true, StepEnglishDictionary},
		{"vietnamese telex", word(t, "vietj", "việt", inputmethod.Telex), false, StepVietnameseDictionary},
		{"vietnamese canonical", word(t, "vieetj", "việt", inputmethod.Telex), false, StepVietnameseDictionary},
		{"vietnamese vni", word(t, "viet65", "việt", inputmethod.VNI), false, StepVietnameseDictionary},
		{"in both dictionaries", word(t, "tax", "tã", inputmethod.Telex), false, StepVietnameseDictionary},
		{"custom vietnamese", word(t, "mix", "mĩ", inputmethod.Telex), false, StepCustomVietnamese},
		{"custom english", word(t, "kaf", "kà", inputmethod.Telex), true, StepCustomEnglish},
		{"foreign onset english", word(t, "blue", "blue", inputmethod.Telex), true, StepForeignOnset},
		{"foreign onset unknown", word(t, "blahs", "bláh", inputmethod.Telex), false, StepForeignOnset},
		{"tone collision suffix", word(t, "disability", "díability", inputmethod.Telex), true, StepToneCollision},
		{"tone collision inflection", word(t, "uses", "úes", inputmethod.Telex), true, StepToneCollision},
		{"unknown", word(t, "hoaf", "hoà", inputmethod.Telex), false, StepEnglishDictionary},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := p.Decide(tt.w)
			assert.Equal(t, tt.restore, v.Restore)
			assert.Equal(t, tt.step, v.Step)
		})
	}
}

// A tone key followed by a consonant is not a collision, so "tests" is
// not reduced to its stem and only the full word in the English
// dictionary restores it.
func TestToneKeyBeforeConsonantSkipsStems(t *testing.T) {
	w := word(t, "tests", "tets", inputmethod.Telex)
	assert.False(t, HasToneCollision(w.Raw, inputmethod.Telex))

	stemOnly := &Pipeline{English: dict(t, "test")}
	assert.Equal(t, Verdict{Restore: false, Step: StepEnglishDictionary}, stemOnly.Decide(w))

	full := &Pipeline{English: dict(t, "test", "tests")}
	assert.Equal(t, Verdict{Restore: true, Step: StepEnglishDictionary}, full.Decide(w))
}

func TestToneStrippedEnglish(t *testing.T) {
	p := &Pipeline{
		English:    dict(t, "cafe"),
		Vietnamese: dict(t, "ca"),
	}
	// "cafse" folds to the English "cafe" once the tone key is gone.
	v := p.Decide(word(t, "cafse", "cáfe", inputmethod.Telex))
	assert.Equal(t, Verdict{Restore: true, Step: StepToneStrippedEnglish}, v)

	p.Vietnamese = dict(t, "cafe")
	v = p.Decide(word(t, "cafse", "cáfe", inputmethod.Telex))
	assert.False(t, v.Restore)
}

func TestDecideWithoutEvidence(t *testing.T) {
	var p Pipeline
	v := p.Decide(word(t, "thesis", "théis", inputmethod.Telex))
	assert.Equal(t, Verdict{Restore: false, Step: StepEnglishDictionary}, v)

	// Uninitialized tries behave like empty ones.
	broken, err := trie.Load([]byte("junk"))
	require.Error(t, err)
	p = Pipeline{English: broken, Vietnamese: broken}
	assert.False(t, p.Decide(word(t, "thesis", "théis", inputmethod.Telex)).Restore)
}

func TestDecideDoesNotModifyWord(t *testing.T) {
	p := pipeline(t, "")
	w := word(t, "thesis", "théis", inputmethod.Telex)
	before := append([]letter.Letter(nil), w.Letters...)
	p.Decide(w)
	assert.Equal(t, before, w.Letters)
}

func TestSteps(t *testing.T) {
	assert.Equal(t, []string{
		StepCustomVietnamese,
		StepCustomEnglish,
		StepVietnameseDictionary,
		StepForeignOnset,
		StepToneStrippedEnglish,
		StepToneCollision,
		StepEnglishDictionary,
	}, Steps())
}

func TestHasForeignOnset(t *testing.T) {
	for _, w := range []string{"blue", "street", "throw", "fix", "jazz", "world", "zoo", "swift"} {
		assert.True(t, HasForeignOnset(w), w)
	}
	for _, w := range []string{"", "thanh", "nghieng", "tra", "khoa", "phai"} {
		assert.False(t, HasForeignOnset(w), w)
	}
}

func TestHasToneCollision(t *testing.T) {
	assert.True(t, HasToneCollision("thesis", inputmethod.Telex))
	assert.True(t, HasToneCollision("users", inputmethod.Telex))
	assert.False(t, HasToneCollision("tast", inputmethod.Telex))
	assert.False(t, HasToneCollision("vieejt", inputmethod.Telex))
	assert.False(t, HasToneCollision("as", inputmethod.Telex))
	assert.False(t, HasToneCollision("a1b2a", inputmethod.VNI))
	assert.True(t, HasToneCollision("a1a", inputmethod.VNI))
}

func TestSuffixStems(t *testing.T) {
	assert.Equal(t, []string{"reliable"}, SuffixStems("reliability"))
	assert.Equal(t, []string{"mak", "make"}, SuffixStems("making"))
	assert.Equal(t, []string{"us", "use"}, SuffixStems("used"))
	assert.Equal(t, []string{"bus", "buse"}, SuffixStems("bused"))
	assert.Empty(t, SuffixStems("is"))
	assert.Empty(t, SuffixStems("tree"))
}
