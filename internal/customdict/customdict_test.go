package customdict

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCaseInsensitive(t *testing.T) {
	o := New()
	require.NoError(t, o.Load([]byte(`[{"word":"Ok","type":"en"}]`)))

	assert.True(t, o.ContainsEnglish("ok"))
	assert.True(t, o.ContainsEnglish("OK"))
	assert.False(t, o.ContainsVietnamese("ok"))
}

func TestLoadBuckets(t *testing.T) {
	o := New()
	err := o.Load([]byte(`[
		{"word": "  GitHub ", "type": "english"},
		{"word": "Việt", "type": "VI"},
		{"word": "phở", "type": "vietnamese"},
		{"word": "bonjour", "type": "fr"},
		{"word": "   ", "type": "en"}
	]`))
	require.NoError(t, err)

	en, vi := o.Counts()
	assert.Equal(t, 1, en)
	assert.Equal(t, 2, vi)
	assert.True(t, o.ContainsEnglish("github"))
	assert.True(t, o.ContainsVietnamese("việt"))
	assert.False(t, o.ContainsEnglish("bonjour"))

	assert.Equal(t, []Entry{
		{Word: "github", Type: KindEnglish},
		{Word: "phở", Type: KindVietnamese},
		{Word: "việt", Type: KindVietnamese},
	}, o.Entries())
}

func TestLoadFailureIsEmpty(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"malformed", `[{"word":`},
		{"not an array", `{"word":"ok","type":"en"}`},
		{"missing type", `[{"word":"ok"}]`},
		{"word not string", `[{"word":1,"type":"en"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := New()
			require.NoError(t, o.Load([]byte(`[{"word":"keep","type":"en"}]`)))

			err := o.Load([]byte(tt.data))
			assert.ErrorIs(t, err, ErrInvalidJSON)
			en, vi := o.Counts()
			assert.Zero(t, en)
			assert.Zero(t, vi)
			assert.False(t, o.ContainsEnglish("keep"))
		})
	}
}

func TestLoadEmptyDocument(t *testing.T) {
	o := New()
	assert.NoError(t, o.Load(nil))
	assert.NoError(t, o.Load([]byte("  \n")))
	assert.NoError(t, o.Load([]byte("[]")))
	assert.Empty(t, o.Entries())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "custom.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"word":"vnkey","type":"en"}]`), 0o600))

	o := New()
	require.NoError(t, o.LoadFile(path))
	assert.True(t, o.ContainsEnglish("vnkey"))

	require.NoError(t, o.LoadFile(filepath.Join(dir, "missing.json")))
	assert.False(t, o.ContainsEnglish("vnkey"))
}

func TestParseKind(t *testing.T) {
	k, ok := ParseKind(" English ")
	assert.True(t, ok)
	assert.Equal(t, KindEnglish, k)

	_, ok = ParseKind("de")
	assert.False(t, ok)
}

func TestConcurrentReload(t *testing.T) {
	o := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = o.Load([]byte(`[{"word":"a","type":"en"},{"word":"b","type":"vi"}]`))
		}()
		go func() {
			defer wg.Done()
			_ = o.ContainsEnglish("a")
			_, _ = o.Counts()
		}()
	}
	wg.Wait()
	assert.True(t, o.ContainsEnglish("a"))
	assert.True(t, o.ContainsVietnamese("b"))
}
