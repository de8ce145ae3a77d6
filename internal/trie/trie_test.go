package trie

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, words ...string) *Dictionary {
	t.Helper()
	b := NewBuilder()
	for _, w := range words {
		require.NoError(t, b.Add(w))
	}
	return b.Build()
}

func TestContains(t *testing.T) {
	d := build(t, "the", "thesis", "then", "a", "vietj")

	assert.True(t, d.Initialized())
	assert.Equal(t, 5, d.WordCount())

	for _, w := range []string{"the", "thesis", "then", "a", "vietj", "THE", "Thesis"} {
		assert.True(t, d.Contains(w), w)
	}
	for _, w := range []string{"", "th", "thes", "b", "theses", "thé", "the!", "then "} {
		assert.False(t, d.Contains(w), w)
	}
}

func TestLookupLength(t *testing.T) {
	d := build(t, "then")
	word := []byte("thenceforth")
	assert.True(t, d.Lookup(word, 4))
	assert.False(t, d.Lookup(word, 3))
	assert.False(t, d.Lookup(word, 0))
	assert.False(t, d.Lookup(word, 99))
}

func TestMaxWordLength(t *testing.T) {
	long := strings.Repeat("a", MaxWordLen)
	d := build(t, long)
	assert.True(t, d.Contains(long))
	assert.False(t, d.Contains(long+"a"))

	err := NewBuilder().Add(long + "a")
	assert.ErrorIs(t, err, ErrInvalidWord)
}

func TestBuilderRejectsInvalid(t *testing.T) {
	b := NewBuilder()
	assert.ErrorIs(t, b.Add(""), ErrInvalidWord)
	assert.ErrorIs(t, b.Add("don't"), ErrInvalidWord)
	assert.ErrorIs(t, b.Add("việt"), ErrInvalidWord)
	require.NoError(t, b.Add("Word"))
	require.NoError(t, b.Add("word"))
	assert.Equal(t, 1, b.Len())
}

func TestAddFrom(t *testing.T) {
	b := NewBuilder()
	added, skipped, err := b.AddFrom(strings.NewReader("# header\nalpha\n\nbeta\nalpha\nbad word\n"))
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, 1, skipped)
}

// Membership must match the source word list exactly.
func TestMembershipMatchesSource(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	randomWord := func() string {
		n := 1 + rng.Intn(8)
		b := make([]byte, n)
		for i := range b {
			b[i] = 'a' + byte(rng.Intn(6))
		}
		return string(b)
	}

	source := map[string]bool{}
	b := NewBuilder()
	for i := 0; i < 500; i++ {
		w := randomWord()
		source[w] = true
		require.NoError(t, b.Add(w))
	}
	d := b.Build()
	assert.Equal(t, len(source), d.WordCount())

	for i := 0; i < 5000; i++ {
		w := randomWord()
		assert.Equal(t, source[w], d.Contains(w), w)
	}

	var walked []string
	d.Words(func(w string) bool {
		walked = append(walked, w)
		return true
	})
	want := make([]string, 0, len(source))
	for w := range source {
		want = append(want, w)
	}
	sort.Strings(want)
	assert.Equal(t, want, walked)
}

func TestLoadErrors(t *testing.T) {
	valid := NewBuilder()
	require.NoError(t, valid.Add("ok"))
	data := valid.Bytes()

	t.Run("short header", func(t *testing.T) {
		d, err := Load(data[:8])
		assert.ErrorIs(t, err, ErrTruncated)
		assert.False(t, d.Initialized())
	})

	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte("PHT2"), data[4:]...)
		d, err := Load(bad)
		assert.ErrorIs(t, err, ErrBadMagic)
		assert.False(t, d.Contains("ok"))
	})

	t.Run("node count exceeds file", func(t *testing.T) {
		bad := bytes.Clone(data)
		binary.LittleEndian.PutUint32(bad[4:], 1000)
		d, err := Load(bad)
		assert.ErrorIs(t, err, ErrTruncated)
		assert.False(t, d.Initialized())
		assert.False(t, d.Contains("ok"))
	})

	t.Run("zero nodes", func(t *testing.T) {
		bad := bytes.Clone(data[:HeaderSize])
		binary.LittleEndian.PutUint32(bad[4:], 0)
		_, err := Load(bad)
		assert.ErrorIs(t, err, ErrTruncated)
	})

	t.Run("out of range child", func(t *testing.T) {
		bad := bytes.Clone(data)
		// root edge for 'o' points past the last node
		binary.LittleEndian.PutUint32(bad[HeaderSize+('o'-'a')*4:], 77)
		d, err := Load(bad)
		require.NoError(t, err)
		assert.False(t, d.Contains("ok"))
	})
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "en.bin")

	b := NewBuilder()
	require.NoError(t, b.Add("hello"))
	f, err := os.Create(path)
	require.NoError(t, err)
	_, err = b.WriteTo(f)
	require.NoError(t, err)
	require.NoError(t, f.Close())

	d, err := LoadFile(path)
	require.NoError(t, err)
	assert.True(t, d.Contains("hello"))
	assert.Equal(t, 6, d.NodeCount())

	d, err = LoadFile(filepath.Join(dir, "missing.bin"))
	assert.Error(t, err)
	assert.False(t, d.Initialized())
}

func TestNilDictionary(t *testing.T) {
	var d *Dictionary
	assert.False(t, d.Initialized())
	assert.False(t, d.Contains("a"))
	assert.Zero(t, d.WordCount())
	assert.Zero(t, d.NodeCount())
}
