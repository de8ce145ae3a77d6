// Package store provides SQLite-backed persistence for custom words and
// macros.
package store

import (
	"errors"

	"vnkey/internal/customdict"
)

// ErrNotFound is returned when a word or macro does not exist.
var ErrNotFound = errors.New("store: not found")

// Word is a custom dictionary entry.
type Word struct {
	ID      int64
	Word    string
	Kind    customdict.Kind
	AddedAt int64
}

// Macro maps a shorthand to its expansion.
type Macro struct {
	Key       string
	Expansion string
	UpdatedAt int64
	Hits      int64
}

// Stats summarizes store contents.
type Stats struct {
	EnglishWords    int64
	VietnameseWords int64
	Macros          int64
	SchemaVersion   int
}
