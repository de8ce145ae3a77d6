package session

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnkey/internal/diacritic"
	"vnkey/internal/inputmethod"
	"vnkey/internal/restore"
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

// vietnamese builds a trie holding every Telex spelling of words.
func vietnamese(t *testing.T, words ...string) *trie.Dictionary {
	t.Helper()
	b := trie.NewBuilder()
	for _, w := range words {
		spellings, err := inputmethod.TelexSpellings(w)
		require.NoError(t, err)
		for _, s := range spellings {
			require.NoError(t, b.Add(s))
		}
	}
	return b.Build()
}

func newTypist(t *testing.T, opts Options) (*Typist, *Session) {
	t.Helper()
	p := &restore.Pipeline{
		English:    dict(t, "thesis", "case", "mass"),
		Vietnamese: vietnamese(t, "việt", "nam", "người", "tiếng"),
	}
	s := New(opts, p, MacroTable{"ko": "không", "vn": "Việt Nam"})
	return &Typist{Handler: s}, s
}

func TestTelex(t *testing.T) {
	tests := []struct {
		keys string
		want string
	}{
		{"vietj", "việt"},
		{"vieetj", "việt"},
		{"vieejt", "việt"},
		{"tieengs", "tiếng"},
		{"nguowif", "người"},
		{"nguwowif", "người"},
		{"dduowcj", "được"},
		{"hoaf", "hoà"},
		{"hoanf", "hoàn"},
		{"khoer", "khoẻ"},
		{"tuw", "tư"},
		{"tuow", "tươ"},
		{"tuoww", "tuow"},
		{"w", "ư"},
		{"ww", "w"},
		{"www", "ww"},
		{"trw", "trư"},
		{"t[", "tơ"},
		{"t]", "tư"},
		{"mass", "mas"},
		{"asz", "a"},
		{"az", "az"},
		{"ddi", "đi"},
		{"dddi", "ddi"},
		{"aa", "â"},
		{"aaa", "aa"},
		{"thuwow", "thươ"},
		{"Vieetj", "Việt"},
		{"VIEETJ", "VIỆT"},
		{"xin", "xin"},
		{"bloow", "bloow"},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			typist, _ := newTypist(t, DefaultOptions())
			assert.Equal(t, tt.want, typist.Type(tt.keys))
		})
	}
}

func TestVNI(t *testing.T) {
	opts := DefaultOptions()
	opts.Method = inputmethod.VNI
	tests := []struct {
		keys string
		want string
	}{
		{"viet65", "việt"},
		{"vie65t", "việt"},
		{"nguoi72", "người"},
		{"d9i", "đi"},
		{"a8", "ă"},
		{"a11", "a1"},
		{"a10", "a"},
		{"u7", "ư"},
		{"h2", "h2"},
	}
	for _, tt := range tests {
		t.Run(tt.keys, func(t *testing.T) {
			typist, _ := newTypist(t, opts)
			assert.Equal(t, tt.want, typist.Type(tt.keys))
		})
	}
}

func TestSimpleTelex(t *testing.T) {
	opts := DefaultOptions()
	opts.Method = inputmethod.SimpleTelex
	typist, _ := newTypist(t, opts)
	assert.Equal(t, "w", typist.Type("w"))

	typist, _ = newTypist(t, opts)
	assert.Equal(t, "tư", typist.Type("tuw"))
}

func TestClassicalBackspaceMovesTone(t *testing.T) {
	opts := DefaultOptions()
	opts.Style = diacritic.StyleClassical
	typist, s := newTypist(t, opts)
	assert.Equal(t, "hoàn", typist.Type("hoanf"))

	res := typist.Press(Key{Code: KeyBackspace})
	assert.Equal(t, ActionModify, res.Action)
	assert.False(t, res.PassThrough)
	assert.Equal(t, "hòa", typist.String())
	assert.Equal(t, "hòa", s.Word())
	assert.Equal(t, "hoaf", s.RawKeys())
}

func TestRandomPlainKeysPassThrough(t *testing.T) {
	const plain = "bcghiklmnpqtuvyBCGHIKLMNPQTUVY0123456789 "
	opts := DefaultOptions()
	opts.Macros = false
	rng := rand.New(rand.NewSource(7))
	for n := 0; n < 200; n++ {
		var sb strings.Builder
		for i := rng.Intn(40); i >= 0; i-- {
			sb.WriteByte(plain[rng.Intn(len(plain))])
		}
		in := sb.String()
		typist, _ := newTypist(t, opts)
		require.Equal(t, in, typist.Type(in))
	}
}

func TestMinimalEdit(t *testing.T) {
	typist, _ := newTypist(t, DefaultOptions())
	typist.Type("viet")
	res := typist.Press(CharKey('j'))
	assert.Equal(t, Result{Action: ActionModify, Backspaces: 2, Text: []rune("ệt")}, res)

	res = typist.Press(CharKey('s'))
	assert.Equal(t, Result{Action: ActionModify, Backspaces: 2, Text: []rune("ết")}, res)
	assert.Equal(t, "viết", typist.String())
}

func TestRestoreAtBreak(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	typist.Type("thesis")
	res := typist.Press(Key{Code: KeySpace})
	assert.Equal(t, ActionRestore, res.Action)
	assert.True(t, res.PassThrough)
	assert.Equal(t, "thesis ", typist.String())
	assert.Equal(t, restore.StepEnglishDictionary, s.LastVerdict().Step)

	typist.Type("vietj ")
	assert.Equal(t, "thesis việt ", typist.String())
	assert.False(t, s.LastVerdict().Restore)
	assert.Equal(t, restore.StepVietnameseDictionary, s.LastVerdict().Step)
}

func TestTypeLineFinishesLastWord(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	assert.Equal(t, "thesis", typist.TypeLine("thesis"))
	assert.Equal(t, "thesis\nviệt", typist.TypeLine("vietj"))
	assert.Equal(t, "", s.Word())
}

func TestRestoreDisabled(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoRestore = false
	typist, _ := newTypist(t, opts)
	assert.Equal(t, "theis ", typist.Type("thesis "))
}

func TestRestoreKeepsCase(t *testing.T) {
	typist, _ := newTypist(t, DefaultOptions())
	assert.Equal(t, "Thesis.", typist.Type("Thesis."))
}

func TestMacro(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	typist.Type("KO")
	res := typist.Press(Key{Code: KeySpace})
	assert.Equal(t, Result{Action: ActionReplaceMacro, Backspaces: 2, Text: []rune("không"), PassThrough: true}, res)
	assert.Equal(t, "ko", s.LastMacro())
	assert.Equal(t, "không vn", typist.Type("vn"))
	typist.Press(Key{Code: KeyEnter})
	assert.Equal(t, "không Việt Nam\n", typist.String())

	opts := DefaultOptions()
	opts.Macros = false
	typist, _ = newTypist(t, opts)
	assert.Equal(t, "ko ", typist.Type("ko "))
}

func TestBackspace(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	typist.Type("vietj")

	res := typist.Press(Key{Code: KeyBackspace})
	assert.True(t, res.PassThrough)
	assert.Equal(t, "việ", typist.String())
	assert.Equal(t, "viej", s.RawKeys())

	typist.Press(Key{Code: KeyBackspace})
	typist.Press(Key{Code: KeyBackspace})
	typist.Press(Key{Code: KeyBackspace})
	assert.Equal(t, "", typist.String())
	assert.Equal(t, "", s.Word())
	assert.Equal(t, "", s.RawKeys())

	res = typist.Press(Key{Code: KeyBackspace})
	assert.Equal(t, pass, res)
}

func TestBackspaceDropsMarkKeys(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	assert.Equal(t, "thé", typist.Type("thes"))
	typist.Press(Key{Code: KeyBackspace})
	assert.Equal(t, "th", typist.String())
	assert.Equal(t, "th", s.RawKeys())

	assert.Equal(t, "thesis ", typist.Type("esis "))
	assert.True(t, s.LastVerdict().Restore)
	assert.Equal(t, restore.StepEnglishDictionary, s.LastVerdict().Step)

	for in, raw := range map[string]string{
		"caa":  "c",
		"tuw":  "t",
		"dd":   "",
		"ass":  "a",
		"tuow": "tuw",
	} {
		typist, s := newTypist(t, DefaultOptions())
		typist.Type(in)
		typist.Press(Key{Code: KeyBackspace})
		assert.Equal(t, raw, s.RawKeys(), in)
	}
}

func TestBackspaceThenEscape(t *testing.T) {
	opts := DefaultOptions()
	opts.RestoreOnEscape = true
	typist, s := newTypist(t, opts)
	assert.Equal(t, "tá", typist.Type("tas"))
	typist.Press(Key{Code: KeyBackspace})
	assert.Equal(t, "t", s.RawKeys())

	typist.Press(Key{Code: KeyEscape})
	assert.Equal(t, "t", typist.String())
}

func TestBackspaceReopensWord(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	typist.Type("vietj ")
	typist.Press(Key{Code: KeyBackspace})
	assert.Equal(t, "việt", typist.String())
	assert.Equal(t, "việt", s.Word())
	assert.Equal(t, "vietj", s.RawKeys())

	typist.Type("s")
	assert.Equal(t, "viết", typist.String())
}

func TestBackspaceAfterTwoBreaks(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	typist.Type("vietj  ")
	typist.Press(Key{Code: KeyBackspace})
	assert.Equal(t, "việt ", typist.String())
	assert.Equal(t, "", s.Word())
}

func TestBackspaceReopensRestoredWord(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	typist.Type("thesis ")
	typist.Press(Key{Code: KeyBackspace})
	assert.Equal(t, "thesis", s.Word())
	// Restored words stay literal.
	assert.Equal(t, "thesiss", typist.Type("s"))
}

func TestSpill(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	long := strings.Repeat("b", MaxWindow+8)
	assert.Equal(t, long, typist.Type(long))
	assert.Equal(t, 8, s.Spilled())
	assert.Equal(t, long, s.Word())
	assert.Equal(t, long, s.RawKeys())

	for i := 0; i < len(long); i++ {
		res := typist.Press(Key{Code: KeyBackspace})
		require.Equal(t, pass, res)
	}
	assert.Equal(t, "", typist.String())
	assert.Equal(t, 0, s.Spilled())
}

func TestRestoreToRawKeys(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	_, ok := s.RestoreToRawKeys()
	assert.False(t, ok)

	typist.Type("vietj")
	res, ok := s.RestoreToRawKeys()
	require.True(t, ok)
	assert.Equal(t, Result{Action: ActionRestoreAndReset, Backspaces: 4, Text: []rune("vietj")}, res)
	assert.Equal(t, "", s.Word())
	typist.Text = res.Apply(typist.Text)
	assert.Equal(t, "vietj", typist.String())
}

func TestEscape(t *testing.T) {
	opts := DefaultOptions()
	opts.RestoreOnEscape = true
	typist, _ := newTypist(t, opts)
	typist.Type("vietj")
	res := typist.Press(Key{Code: KeyEscape})
	assert.Equal(t, ActionRestoreAndReset, res.Action)
	assert.Equal(t, "vietj", typist.String())

	typist, s := newTypist(t, DefaultOptions())
	typist.Type("vietj")
	res = typist.Press(Key{Code: KeyEscape})
	assert.Equal(t, pass, res)
	assert.Equal(t, "việt", typist.String())
	assert.Equal(t, "", s.Word())
}

func TestComboAndNavigationReset(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	typist.Type("vie")
	res := typist.Press(Key{Code: KeyChar, Char: 'c', Modifiers: ModControl})
	assert.Equal(t, pass, res)
	assert.Equal(t, "", s.Word())
	assert.Equal(t, "viej", typist.Type("j"))

	typist.Type("a")
	typist.Press(Key{Code: KeyLeft})
	assert.Equal(t, "", s.Word())
}

func TestShiftAndCapsLock(t *testing.T) {
	typist, _ := newTypist(t, DefaultOptions())
	typist.Press(Key{Code: KeyChar, Char: 'v', Modifiers: ModShift})
	typist.Type("ieetj")
	assert.Equal(t, "Việt", typist.String())

	typist, _ = newTypist(t, DefaultOptions())
	for _, r := range "aas" {
		typist.Press(Key{Code: KeyChar, Char: r, Modifiers: ModCapsLock})
	}
	assert.Equal(t, "Ấ", typist.String())

	typist, _ = newTypist(t, DefaultOptions())
	typist.Type("a")
	typist.Press(Key{Code: KeyChar, Char: '1', Modifiers: ModShift})
	assert.Equal(t, "a!", typist.String())
}

func TestPrimeUpperCaseFirstChar(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	s.PrimeUpperCaseFirstChar()
	res := typist.Press(CharKey('v'))
	assert.Equal(t, Result{Action: ActionModify, Text: []rune("V")}, res)
	assert.Equal(t, "Việt", typist.Type("ieetj"))
}

func TestAutoCapitalize(t *testing.T) {
	opts := DefaultOptions()
	opts.AutoCapitalize = true
	typist, _ := newTypist(t, opts)
	assert.Equal(t, "xin. Chao! Ban", typist.Type("xin. chao! ban"))

	typist, _ = newTypist(t, DefaultOptions())
	assert.Equal(t, "xin. chao", typist.Type("xin. chao"))
}

func TestQuickConsonants(t *testing.T) {
	opts := DefaultOptions()
	opts.Syllable.QuickStartConsonant = true
	opts.Syllable.QuickEndConsonant = true
	typist, _ := newTypist(t, opts)
	assert.Equal(t, "chan tang ", typist.Type("ccan tag "))

	typist, _ = newTypist(t, DefaultOptions())
	assert.Equal(t, "ccan tag ", typist.Type("ccan tag "))
}

func TestStartNewSession(t *testing.T) {
	typist, s := newTypist(t, DefaultOptions())
	typist.Type("vie")
	s.StartNewSession()
	assert.Equal(t, "", s.Word())
	assert.Equal(t, "viej", typist.Type("j"))
}

func TestSetOptions(t *testing.T) {
	_, s := newTypist(t, DefaultOptions())
	opts := s.Options()
	opts.Method = inputmethod.VNI
	s.SetOptions(opts)
	assert.Equal(t, inputmethod.VNI, s.Options().Method)
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "restore-and-reset", ActionRestoreAndReset.String())
	assert.Equal(t, "Action(9)", Action(9).String())
	assert.Equal(t, `modify bs=1 text="a" pass=false`, Result{Action: ActionModify, Backspaces: 1, Text: []rune("a")}.String())
}
