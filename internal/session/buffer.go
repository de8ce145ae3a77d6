package session

// MaxWindow is the number of recent entries an edit may rewrite.
const MaxWindow = 32

// bounded keeps the most recent max entries in window and moves older
// ones to spill. Nothing is dropped; pop pulls spilled entries back.
type bounded[T any] struct {
	max    int
	window []T
	spill  []T
}

func newBounded[T any](max int) bounded[T] {
	return bounded[T]{max: max, window: make([]T, 0, max)}
}

func (b *bounded[T]) push(v T) {
	if len(b.window) == b.max {
		b.spill = append(b.spill, b.window[0])
		copy(b.window, b.window[1:])
		b.window = b.window[:len(b.window)-1]
	}
	b.window = append(b.window, v)
}

func (b *bounded[T]) pop() (T, bool) {
	var zero T
	n := len(b.window)
	if n == 0 {
		return zero, false
	}
	v := b.window[n-1]
	b.window = b.window[:n-1]
	b.refill()
	return v, true
}

// refill moves the newest spilled entry back to the front of the window.
func (b *bounded[T]) refill() {
	if len(b.spill) == 0 || len(b.window) >= b.max {
		return
	}
	last := b.spill[len(b.spill)-1]
	b.spill = b.spill[:len(b.spill)-1]
	b.window = append(b.window, last)
	copy(b.window[1:], b.window[:len(b.window)-1])
	b.window[0] = last
}

func (b *bounded[T]) len() int { return len(b.spill) + len(b.window) }

func (b *bounded[T]) spilled() int { return len(b.spill) }

// all returns every entry, oldest first.
func (b *bounded[T]) all() []T {
	out := make([]T, 0, b.len())
	out = append(out, b.spill...)
	return append(out, b.window...)
}

func (b *bounded[T]) at(i int) T {
	if i < len(b.spill) {
		return b.spill[i]
	}
	return b.window[i-len(b.spill)]
}

func (b *bounded[T]) set(i int, v T) {
	if i < len(b.spill) {
		b.spill[i] = v
		return
	}
	b.window[i-len(b.spill)] = v
}

// removeAt deletes entry i, counting from the oldest.
func (b *bounded[T]) removeAt(i int) {
	if i < len(b.spill) {
		b.spill = append(b.spill[:i], b.spill[i+1:]...)
		return
	}
	j := i - len(b.spill)
	b.window = append(b.window[:j], b.window[j+1:]...)
	b.refill()
}

func (b *bounded[T]) reset() {
	b.window = b.window[:0]
	b.spill = nil
}
