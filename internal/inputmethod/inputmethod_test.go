package inputmethod

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vnkey/internal/diacritic"
	"vnkey/internal/letter"
)

func TestParseMethod(t *testing.T) {
	for in, want := range map[string]Method{
		"telex":        Telex,
		"":             Telex,
		"VNI":          VNI,
		"simple-telex": SimpleTelex,
		"simple_telex": SimpleTelex,
	} {
		m, err := ParseMethod(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, m, in)
	}
	_, err := ParseMethod("viqr")
	assert.Error(t, err)

	assert.Equal(t, "vni", VNI.String())
	assert.Equal(t, "Method(9)", Method(9).String())
}

func TestTelexTriggers(t *testing.T) {
	tr, ok := Telex.Trigger('s')
	require.True(t, ok)
	assert.Equal(t, Trigger{Action: ActionTone, Tone: letter.ToneAcute}, tr)

	tr, ok = Telex.Trigger('o')
	require.True(t, ok)
	assert.Equal(t, ActionCircumflex, tr.Action)
	assert.Equal(t, byte('o'), tr.Base)

	tr, ok = Telex.Trigger('w')
	require.True(t, ok)
	assert.Equal(t, ActionHorn, tr.Action)
	assert.Equal(t, diacritic.HornAll, tr.Horn)
	assert.True(t, tr.StandaloneW)
	assert.Equal(t, "ư", letter.Render([]letter.Letter{tr.Letter}))

	tr, ok = Telex.Trigger('[')
	require.True(t, ok)
	assert.Equal(t, "ơ", letter.Render([]letter.Letter{tr.Letter}))

	_, ok = Telex.Trigger('b')
	assert.False(t, ok)
	_, ok = Telex.Trigger('1')
	assert.False(t, ok)
}

func TestSimpleTelexTriggers(t *testing.T) {
	tr, ok := SimpleTelex.Trigger('w')
	require.True(t, ok)
	assert.False(t, tr.StandaloneW)

	_, ok = SimpleTelex.Trigger(']')
	assert.False(t, ok)
	assert.False(t, SimpleTelex.IsWordKey('['))
}

func TestVNITriggers(t *testing.T) {
	tr, ok := VNI.Trigger('6')
	require.True(t, ok)
	assert.Equal(t, Trigger{Action: ActionCircumflex}, tr)

	tr, ok = VNI.Trigger('8')
	require.True(t, ok)
	assert.Equal(t, diacritic.BreveOnly, tr.Horn)

	tr, ok = VNI.Trigger('0')
	require.True(t, ok)
	assert.Equal(t, ActionRemoveTone, tr.Action)

	_, ok = VNI.Trigger('s')
	assert.False(t, ok)
}

func TestIsWordKey(t *testing.T) {
	assert.True(t, Telex.IsWordKey('a'))
	assert.True(t, VNI.IsWordKey('Z'))
	assert.True(t, VNI.IsWordKey('7'))
	assert.True(t, Telex.IsWordKey('7'))
	assert.True(t, Telex.IsWordKey(']'))
	assert.False(t, VNI.IsWordKey(']'))
	assert.False(t, Telex.IsWordKey('.'))
	assert.False(t, Telex.IsWordKey(' '))

	assert.Equal(t, "sfrxj", Telex.ToneKeys())
	assert.Equal(t, "12345", VNI.ToneKeys())
}

func TestTelexSpellings(t *testing.T) {
	tests := []struct {
		word      string
		canonical string
		variants  []string
	}{
		{"ba", "ba", nil},
		{"má", "mas", nil},
		{"việt", "vieetj", []string{"vietj", "vieejt"}},
		{"được", "dduowcj", []string{"dduwowcj", "dduowjc"}},
		{"người", "nguowif", []string{"nguwowif"}},
		{"tăng", "tawng", nil},
		{"Hà", "haf", nil},
		{"muốn", "muoons", []string{"muons", "muoosn"}},
	}
	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			got, err := TelexSpellings(tt.word)
			require.NoError(t, err)
			require.NotEmpty(t, got)
			assert.Equal(t, tt.canonical, got[0])
			for _, v := range tt.variants {
				assert.Contains(t, got, v)
			}
		})
	}
}

func TestTelexSpellingsRejects(t *testing.T) {
	_, err := TelexSpellings("")
	assert.Error(t, err)
	_, err = TelexSpellings("a1")
	assert.Error(t, err)
}

func TestCanonical(t *testing.T) {
	ls, err := letter.Parse("thuở")
	require.NoError(t, err)
	assert.Equal(t, "thuowr", Canonical(ls))
}
