package session

import "strings"

// Typist replays key presses against a text buffer the way an injector
// applies Results. It backs the CLI's typing simulation and the tests.
type Typist struct {
	Handler interface{ HandleKey(Key) Result }
	Text    []rune
}

// Press sends k and applies the Result.
func (t *Typist) Press(k Key) Result {
	res := t.Handler.HandleKey(k)
	t.Text = res.Apply(t.Text)
	if !res.PassThrough {
		return res
	}
	switch k.Code {
	case KeyChar:
		if k.isCombo() {
			break
		}
		r, upper := k.effective()
		if upper && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		t.Text = append(t.Text, r)
	case KeySpace:
		t.Text = append(t.Text, ' ')
	case KeyEnter:
		t.Text = append(t.Text, '\n')
	case KeyTab:
		t.Text = append(t.Text, '\t')
	case KeyBackspace:
		if n := len(t.Text); n > 0 {
			t.Text = t.Text[:n-1]
		}
	}
	return res
}

// Type presses the keys for text and returns the resulting buffer.
func (t *Typist) Type(text string) string {
	for _, k := range Keys(text) {
		t.Press(k)
	}
	return string(t.Text)
}

// TypeLine types text and presses Enter so the last word is finished.
// It returns the buffer without the final newline.
func (t *Typist) TypeLine(text string) string {
	t.Type(text)
	t.Press(Key{Code: KeyEnter})
	return strings.TrimSuffix(string(t.Text), "\n")
}

// String returns the buffer.
func (t *Typist) String() string { return string(t.Text) }
