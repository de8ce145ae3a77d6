// Package customdict holds the user's word overrides for auto-restore.
//
// The overlay is loaded from JSON of the form
//
//	[{"word": "ok", "type": "en"}, {"word": "việt", "type": "vi"}]
//
// where type is one of en, english, vi or vietnamese. A custom Vietnamese
// word always keeps the transformed text; a custom English word always
// restores the raw keys.
package customdict

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/tidwall/gjson"
)

// ErrInvalidJSON reports a document that is not a valid entry list.
var ErrInvalidJSON = errors.New("customdict: invalid json")

// Kind is the language bucket of an entry.
type Kind string

const (
	KindEnglish    Kind = "en"
	KindVietnamese Kind = "vi"
)

// ParseKind maps an entry type to its bucket. Unknown types report false.
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "en", "english":
		return KindEnglish, true
	case "vi", "vietnamese":
		return KindVietnamese, true
	}
	return "", false
}

// Entry is one custom word.
type Entry struct {
	Word string `json:"word"`
	Type Kind   `json:"type"`
}

const schemaURL = "https://vnkey.local/schema/customdict.schema.json"

const schemaText = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["word", "type"],
    "properties": {
      "word": {"type": "string"},
      "type": {"type": "string"}
    }
  }
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, strings.NewReader(schemaText)); err != nil {
			schemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile(schemaURL)
	})
	return schema, schemaErr
}

type wordSet map[string]struct{}

// Overlay is the pair of custom word sets. The zero value is an empty
// overlay ready for use.
type Overlay struct {
	mu         sync.RWMutex
	english    wordSet
	vietnamese wordSet
}

// New returns an empty overlay.
func New() *Overlay {
	return &Overlay{}
}

// Load replaces both sets with the entries in data. On error the overlay is
// left empty and the error is returned for logging.
func (o *Overlay) Load(data []byte) error {
	en, vi, err := parse(data)
	if err != nil {
		en, vi = wordSet{}, wordSet{}
	}
	o.mu.Lock()
	o.english, o.vietnamese = en, vi
	o.mu.Unlock()
	return err
}

// LoadFile loads the overlay from a JSON file. A missing file yields an
// empty overlay.
func (o *Overlay) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		_ = o.Load(nil)
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read custom dictionary: %w", err)
	}
	return o.Load(data)
}

// parse validates data and buckets its entries by kind.
func parse(data []byte) (english, vietnamese wordSet, err error) {
	english, vietnamese = wordSet{}, wordSet{}
	if len(strings.TrimSpace(string(data))) == 0 {
		return english, vietnamese, nil
	}
	if !gjson.ValidBytes(data) {
		return nil, nil, fmt.Errorf("%w: malformed document", ErrInvalidJSON)
	}

	s, err := compiledSchema()
	if err != nil {
		return nil, nil, err
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if err := s.Validate(doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	gjson.ParseBytes(data).ForEach(func(_, entry gjson.Result) bool {
		word := Normalize(entry.Get("word").String())
		kind, ok := ParseKind(entry.Get("type").String())
		if word == "" || !ok {
			return true
		}
		if kind == KindEnglish {
			english[word] = struct{}{}
		} else {
			vietnamese[word] = struct{}{}
		}
		return true
	})
	return english, vietnamese, nil
}

// Normalize trims and lowercases a word.
func Normalize(word string) string {
	return strings.ToLower(strings.TrimSpace(word))
}

// ContainsEnglish reports whether word is a custom English word.
func (o *Overlay) ContainsEnglish(word string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.english[Normalize(word)]
	return ok
}

// ContainsVietnamese reports whether word is a custom Vietnamese word.
func (o *Overlay) ContainsVietnamese(word string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	_, ok := o.vietnamese[Normalize(word)]
	return ok
}

// Counts returns the sizes of the English and Vietnamese sets.
func (o *Overlay) Counts() (english, vietnamese int) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return len(o.english), len(o.vietnamese)
}

// Entries returns every entry sorted by kind then word.
func (o *Overlay) Entries() []Entry {
	o.mu.RLock()
	out := make([]Entry, 0, len(o.english)+len(o.vietnamese))
	for w := range o.english {
		out = append(out, Entry{Word: w, Type: KindEnglish})
	}
	for w := range o.vietnamese {
		out = append(out, Entry{Word: w, Type: KindVietnamese})
	}
	o.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Type != out[j].Type {
			return out[i].Type < out[j].Type
		}
		return out[i].Word < out[j].Word
	})
	return out
}
