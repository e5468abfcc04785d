// Package ring provides the fixed-capacity sample buffer backing every
// rolling window in the monitor. Overwrite order matches arrival order.
package ring

// Buffer is a fixed-capacity circular buffer. Once full, each Push
// overwrites the oldest element and hands it back so callers can adjust
// running aggregates incrementally instead of rescanning the window.
type Buffer[T any] struct {
	items []T
	write int
	count int
}

// New creates a Buffer with the given capacity. Capacity is validated at
// configuration time; a non-positive value here falls back to 1.
func New[T any](capacity int) *Buffer[T] {
	if capacity < 1 {
		capacity = 1
	}
	return &Buffer[T]{items: make([]T, capacity)}
}

// Push appends a value. When the buffer is full it returns the evicted
// oldest value and true.
func (b *Buffer[T]) Push(v T) (evicted T, overwrote bool) {
	if b.count == len(b.items) {
		evicted = b.items[b.write]
		overwrote = true
	} else {
		b.count++
	}
	b.items[b.write] = v
	b.write = (b.write + 1) % len(b.items)
	return evicted, overwrote
}

// Len returns the number of live samples.
func (b *Buffer[T]) Len() int {
	return b.count
}

// Cap returns the window capacity.
func (b *Buffer[T]) Cap() int {
	return len(b.items)
}

// Do calls f for each live sample. Iteration order is unspecified; the
// window statistics computed from it are order-independent.
func (b *Buffer[T]) Do(f func(T)) {
	for i := 0; i < b.count; i++ {
		f(b.items[i])
	}
}

// Reset drops all samples.
func (b *Buffer[T]) Reset() {
	var zero T
	for i := range b.items {
		b.items[i] = zero
	}
	b.write = 0
	b.count = 0
}
