package trie

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

type buildNode struct {
	children [26]int32
	end      bool
}

func newBuildNode() buildNode {
	var n buildNode
	for i := range n.children {
		n.children[i] = -1
	}
	return n
}

// Builder accumulates words and serializes them in dictionary format.
type Builder struct {
	nodes []buildNode
	words int
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{nodes: []buildNode{newBuildNode()}}
}

// Add inserts a word. Words are folded to lower case and must be 1-30
// letters a-z. Adding a word twice is a no-op.
func (b *Builder) Add(word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if len(word) == 0 || len(word) > MaxWordLen {
		return fmt.Errorf("%w: %q has length %d", ErrInvalidWord, word, len(word))
	}
	for i := 0; i < len(word); i++ {
		if word[i] < 'a' || word[i] > 'z' {
			return fmt.Errorf("%w: %q", ErrInvalidWord, word)
		}
	}

	node := 0
	for i := 0; i < len(word); i++ {
		c := word[i] - 'a'
		next := b.nodes[node].children[c]
		if next < 0 {
			next = int32(len(b.nodes))
			b.nodes = append(b.nodes, newBuildNode())
			b.nodes[node].children[c] = next
		}
		node = int(next)
	}
	if !b.nodes[node].end {
		b.nodes[node].end = true
		b.words++
	}
	return nil
}

// AddFrom reads one word per line from r. Blank lines and lines starting
// with '#' are ignored. Invalid words are counted and skipped.
func (b *Builder) AddFrom(r io.Reader) (added, skipped int, err error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		before := b.words
		if err := b.Add(line); err != nil {
			skipped++
			continue
		}
		if b.words > before {
			added++
		}
	}
	if err := sc.Err(); err != nil {
		return added, skipped, fmt.Errorf("read word list: %w", err)
	}
	return added, skipped, nil
}

// Len returns the number of distinct words added.
func (b *Builder) Len() int {
	return b.words
}

// Bytes serializes the trie. Nodes are numbered breadth-first from the
// root.
func (b *Builder) Bytes() []byte {
	order := make([]int, 0, len(b.nodes))
	index := make([]uint32, len(b.nodes))
	order = append(order, 0)
	index[0] = 0
	for i := 0; i < len(order); i++ {
		for _, child := range b.nodes[order[i]].children {
			if child < 0 {
				continue
			}
			index[child] = uint32(len(order))
			order = append(order, int(child))
		}
	}

	out := make([]byte, HeaderSize+len(order)*NodeSize)
	copy(out, Magic)
	binary.LittleEndian.PutUint32(out[4:], uint32(len(order)))
	binary.LittleEndian.PutUint32(out[8:], uint32(b.words))
	for pos, id := range order {
		rec := out[HeaderSize+pos*NodeSize:]
		n := b.nodes[id]
		for c, child := range n.children {
			v := uint32(NoChild)
			if child >= 0 {
				v = index[child]
			}
			binary.LittleEndian.PutUint32(rec[c*4:], v)
		}
		if n.end {
			rec[26*4] = 1
		}
	}
	return out
}

// WriteTo writes the serialized trie to w.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(b.Bytes())
	return int64(n), err
}

// Build serializes and loads the trie in one step.
func (b *Builder) Build() *Dictionary {
	d, err := Load(b.Bytes())
	if err != nil {
		// Bytes always emits a root node and a consistent header.
		panic(err)
	}
	return d
}
