package session

// KeyCode identifies a logical key.
type KeyCode uint8

const (
	KeyChar KeyCode = iota
	KeySpace
	KeyEnter
	KeyTab
	KeyBackspace
	KeyEscape
	KeyDelete
	KeyLeft
	KeyRight
	KeyUp
	KeyDown
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
)

// Modifiers represents modifier key state.
type Modifiers uint8

const (
	ModShift Modifiers = 1 << iota
	ModCapsLock
	ModControl
	ModAlt
	ModMeta // Command on macOS, Windows key on Windows
)

// Key is one key press.
type Key struct {
	Code KeyCode

	// Char is the unshifted character for KeyChar. An upper-case letter
	// is accepted and counts as shifted.
	Char rune

	Modifiers Modifiers
}

// CharKey returns a KeyChar key for r.
func CharKey(r rune) Key {
	return Key{Code: KeyChar, Char: r}
}

// Keys converts typed text into key presses. Space, tab and newline map
// to their dedicated keys.
func Keys(text string) []Key {
	out := make([]Key, 0, len(text))
	for _, r := range text {
		switch r {
		case ' ':
			out = append(out, Key{Code: KeySpace})
		case '\t':
			out = append(out, Key{Code: KeyTab})
		case '\n':
			out = append(out, Key{Code: KeyEnter})
		default:
			out = append(out, CharKey(r))
		}
	}
	return out
}

// usShifted maps unshifted US layout symbols to their shifted form.
var usShifted = map[rune]rune{
	'`': '~', '1': '!', '2': '@', '3': '#', '4': '$', '5': '%',
	'6': '^', '7': '&', '8': '*', '9': '(', '0': ')', '-': '_',
	'=': '+', '[': '{', ']': '}', '\\': '|', ';': ':', '\'': '"',
	',': '<', '.': '>', '/': '?',
}

// effective returns the character the key produces and whether a letter
// should be upper case.
func (k Key) effective() (r rune, upper bool) {
	shift := k.Modifiers&ModShift != 0
	caps := k.Modifiers&ModCapsLock != 0
	r = k.Char
	switch {
	case r >= 'A' && r <= 'Z':
		return r - 'A' + 'a', !caps
	case r >= 'a' && r <= 'z':
		return r, shift != caps
	}
	if shift {
		if s, ok := usShifted[r]; ok {
			return s, false
		}
	}
	return r, false
}

func (k Key) isCombo() bool {
	return k.Modifiers&(ModControl|ModAlt|ModMeta) != 0
}
