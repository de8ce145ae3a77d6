// Package inputmethod maps keys to diacritic triggers for the supported
// typing conventions.
//
//	Telex        s f r x j = tones, z = clear, aa ee oo = â ê ô,
//	             w = horn/breve or a standalone ư, dd = đ, [ ] = ơ ư
//	Simple Telex Telex without the standalone w and bracket shortcuts
//	VNI          1-5 = tones, 0 = clear, 6 = â ê ô, 7 = ư ơ, 8 = ă, 9 = đ
package inputmethod

import (
	"fmt"
	"strings"

	"vnkey/internal/diacritic"
	"vnkey/internal/letter"
)

// Method is a typing convention.
type Method int

const (
	Telex Method = iota
	VNI
	SimpleTelex
)

var methodNames = map[Method]string{
	Telex:       "telex",
	VNI:         "vni",
	SimpleTelex: "simple-telex",
}

func (m Method) String() string {
	if s, ok := methodNames[m]; ok {
		return s
	}
	return fmt.Sprintf("Method(%d)", int(m))
}

// ParseMethod parses a method name as written in configuration.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "telex", "":
		return Telex, nil
	case "vni":
		return VNI, nil
	case "simple-telex", "simple_telex", "simpletelex":
		return SimpleTelex, nil
	}
	return Telex, fmt.Errorf("unknown input method %q", s)
}

// Action is what a trigger key does to the word.
type Action int

const (
	ActionNone Action = iota
	ActionTone
	ActionRemoveTone
	ActionCircumflex
	ActionHorn
	ActionStroke
	ActionStandalone
)

// Trigger describes a diacritic key.
type Trigger struct {
	Action Action

	// Tone is set for ActionTone.
	Tone letter.Tone

	// Base restricts ActionCircumflex to one vowel; 0 accepts a, e or o.
	Base byte

	// Horn is the mode for ActionHorn.
	Horn diacritic.HornMode

	// Letter is the letter inserted by ActionStandalone, and by an
	// ActionHorn trigger that finds nothing to mark when StandaloneW is set.
	Letter letter.Letter

	// StandaloneW lets a horn trigger insert Letter on its own.
	StandaloneW bool
}

var (
	standaloneU = letter.Letter{Base: 'u', Horn: true, Standalone: true}
	standaloneO = letter.Letter{Base: 'o', Horn: true, Standalone: true}
)

var telexTriggers = map[byte]Trigger{
	's': {Action: ActionTone, Tone: letter.ToneAcute},
	'f': {Action: ActionTone, Tone: letter.ToneGrave},
	'r': {Action: ActionTone, Tone: letter.ToneHook},
	'x': {Action: ActionTone, Tone: letter.ToneTilde},
	'j': {Action: ActionTone, Tone: letter.ToneDot},
	'z': {Action: ActionRemoveTone},
	'a': {Action: ActionCircumflex, Base: 'a'},
	'e': {Action: ActionCircumflex, Base: 'e'},
	'o': {Action: ActionCircumflex, Base: 'o'},
	'w': {Action: ActionHorn, Horn: diacritic.HornAll, Letter: standaloneU, StandaloneW: true},
	'd': {Action: ActionStroke},
	'[': {Action: ActionStandalone, Letter: standaloneO},
	']': {Action: ActionStandalone, Letter: standaloneU},
}

var vniTriggers = map[byte]Trigger{
	'1': {Action: ActionTone, Tone: letter.ToneAcute},
	'2': {Action: ActionTone, Tone: letter.ToneGrave},
	'3': {Action: ActionTone, Tone: letter.ToneHook},
	'4': {Action: ActionTone, Tone: letter.ToneTilde},
	'5': {Action: ActionTone, Tone: letter.ToneDot},
	'0': {Action: ActionRemoveTone},
	'6': {Action: ActionCircumflex},
	'7': {Action: ActionHorn, Horn: diacritic.HornOnly},
	'8': {Action: ActionHorn, Horn: diacritic.BreveOnly},
	'9': {Action: ActionStroke},
}

// Trigger returns the trigger bound to the lowercase key c.
func (m Method) Trigger(c byte) (Trigger, bool) {
	switch m {
	case VNI:
		t, ok := vniTriggers[c]
		return t, ok
	case SimpleTelex:
		if c == '[' || c == ']' {
			return Trigger{}, false
		}
		t, ok := telexTriggers[c]
		t.StandaloneW = false
		return t, ok
	default:
		t, ok := telexTriggers[c]
		return t, ok
	}
}

// IsWordKey reports whether c continues the current word. Letters and
// digits always do, brackets only under Telex. Everything else ends the
// word.
func (m Method) IsWordKey(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	case c == '[' || c == ']':
		return m == Telex
	}
	return false
}

// ToneKeys returns the keys that set a tone.
func (m Method) ToneKeys() string {
	if m == VNI {
		return "12345"
	}
	return "sfrxj"
}
