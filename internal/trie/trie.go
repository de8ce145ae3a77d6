// Package trie implements the frozen 26-ary word trie used for English and
// Vietnamese dictionary membership.
//
// File format (little-endian):
//
//	offset  size        field
//	0       4           magic "PHT3"
//	4       4           nodeCount
//	8       4           wordCount
//	12      105*nodes   node records
//
// Each node record holds 26 uint32 child indices, one per letter a-z
// (0xFFFFFFFF when absent), followed by one isWordEnd byte. Node 0 is the
// root. A loaded Dictionary is immutable and safe for concurrent reads.
package trie

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
)

const (
	// Magic identifies a dictionary file.
	Magic = "PHT3"

	// HeaderSize is the byte length of the file header.
	HeaderSize = 12

	// NodeSize is the byte length of one node record.
	NodeSize = 26*4 + 1

	// MaxWordLen is the longest word a lookup accepts.
	MaxWordLen = 30

	// NoChild marks an absent edge.
	NoChild = 0xFFFFFFFF
)

var (
	ErrBadMagic    = errors.New("trie: bad magic")
	ErrTruncated   = errors.New("trie: truncated file")
	ErrInvalidWord = errors.New("trie: invalid word")
)

// Dictionary is a loaded trie. The zero value is an uninitialized
// dictionary for which every lookup reports false.
type Dictionary struct {
	nodes     []byte
	nodeCount uint32
	wordCount uint32
}

// Load parses dictionary bytes. On error the returned dictionary is
// uninitialized but usable.
func Load(data []byte) (*Dictionary, error) {
	if len(data) < HeaderSize {
		return &Dictionary{}, fmt.Errorf("%w: %d byte header", ErrTruncated, len(data))
	}
	if string(data[:4]) != Magic {
		return &Dictionary{}, fmt.Errorf("%w: %q", ErrBadMagic, data[:4])
	}
	nodeCount := binary.LittleEndian.Uint32(data[4:8])
	wordCount := binary.LittleEndian.Uint32(data[8:12])
	if nodeCount == 0 {
		return &Dictionary{}, fmt.Errorf("%w: no root node", ErrTruncated)
	}
	need := uint64(nodeCount)*NodeSize + HeaderSize
	if need > uint64(len(data)) {
		return &Dictionary{}, fmt.Errorf("%w: %d nodes need %d bytes, have %d",
			ErrTruncated, nodeCount, need, len(data))
	}
	return &Dictionary{
		nodes:     data[HeaderSize:need],
		nodeCount: nodeCount,
		wordCount: wordCount,
	}, nil
}

// LoadFile reads and parses a dictionary file.
func LoadFile(path string) (*Dictionary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Dictionary{}, fmt.Errorf("read dictionary: %w", err)
	}
	d, err := Load(data)
	if err != nil {
		return d, fmt.Errorf("load %s: %w", path, err)
	}
	return d, nil
}

// Initialized reports whether a dictionary was loaded successfully.
func (d *Dictionary) Initialized() bool {
	return d != nil && d.nodeCount > 0
}

// NodeCount returns the number of nodes.
func (d *Dictionary) NodeCount() int {
	if d == nil {
		return 0
	}
	return int(d.nodeCount)
}

// WordCount returns the word count recorded in the header.
func (d *Dictionary) WordCount() int {
	if d == nil {
		return 0
	}
	return int(d.wordCount)
}

// Contains reports whether word is in the dictionary. Upper-case ASCII is
// folded; any other byte outside a-z fails the lookup.
func (d *Dictionary) Contains(word string) bool {
	if !d.Initialized() || len(word) == 0 || len(word) > MaxWordLen {
		return false
	}
	var node uint32
	for i := 0; i < len(word); i++ {
		c := word[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		if c < 'a' || c > 'z' {
			return false
		}
		next := d.child(node, c-'a')
		if next == NoChild || next >= d.nodeCount {
			return false
		}
		node = next
	}
	return d.nodes[int(node)*NodeSize+26*4] != 0
}

// Lookup reports whether the first length bytes of word form a dictionary
// word.
func (d *Dictionary) Lookup(word []byte, length int) bool {
	if length <= 0 || length > len(word) {
		return false
	}
	return d.Contains(string(word[:length]))
}

func (d *Dictionary) child(node uint32, idx byte) uint32 {
	off := int(node)*NodeSize + int(idx)*4
	return binary.LittleEndian.Uint32(d.nodes[off : off+4])
}

// Words walks the trie depth-first in lexical order, calling fn for each
// word until fn returns false.
func (d *Dictionary) Words(fn func(word string) bool) {
	if !d.Initialized() {
		return
	}
	var buf [MaxWordLen]byte
	d.walk(0, buf[:0], fn)
}

func (d *Dictionary) walk(node uint32, prefix []byte, fn func(string) bool) bool {
	if len(prefix) > 0 && d.nodes[int(node)*NodeSize+26*4] != 0 {
		if !fn(string(prefix)) {
			return false
		}
	}
	if len(prefix) == MaxWordLen {
		return true
	}
	for c := byte(0); c < 26; c++ {
		next := d.child(node, c)
		if next == NoChild || next >= d.nodeCount || next == node {
			continue
		}
		if !d.walk(next, append(prefix, 'a'+c), fn) {
			return false
		}
	}
	return true
}
