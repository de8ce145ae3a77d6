package store

import (
	"context"
	"fmt"
	"strconv"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"vnkey/internal/customdict"
)

// ExportCustomDictionary renders the custom words as the JSON document
// customdict.Overlay.Load accepts.
func (s *Store) ExportCustomDictionary(ctx context.Context) ([]byte, error) {
	words, err := s.Words(ctx, "")
	if err != nil {
		return nil, err
	}

	doc := []byte("[]")
	for i, w := range words {
		prefix := strconv.Itoa(i)
		if doc, err = sjson.SetBytes(doc, prefix+".word", w.Word); err != nil {
			return nil, fmt.Errorf("export %q: %w", w.Word, err)
		}
		if doc, err = sjson.SetBytes(doc, prefix+".type", string(w.Kind)); err != nil {
			return nil, fmt.Errorf("export %q: %w", w.Word, err)
		}
	}
	return doc, nil
}

// ImportCustomDictionary adds every entry of a custom-dictionary document
// and returns how many were read. Entries with an unknown type are skipped.
func (s *Store) ImportCustomDictionary(ctx context.Context, data []byte) (int, error) {
	if !gjson.ValidBytes(data) {
		return 0, customdict.ErrInvalidJSON
	}
	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return 0, customdict.ErrInvalidJSON
	}

	n := 0
	var err error
	root.ForEach(func(_, entry gjson.Result) bool {
		kind, ok := customdict.ParseKind(entry.Get("type").String())
		word := entry.Get("word").String()
		if !ok || word == "" {
			return true
		}
		if err = s.AddWord(ctx, kind, word); err != nil {
			return false
		}
		n++
		return true
	})
	return n, err
}
