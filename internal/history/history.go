// Package history stores captured pulse durations in a fixed-capacity ring.
package history

import "errors"

// ErrEmpty is returned by PopOldest when no durations are stored.
var ErrEmpty = errors.New("history: empty")

// ErrOutOfRange is returned by Peek for indexes outside [-len, len-1].
var ErrOutOfRange = errors.New("history: index out of range")

// Buffer is a fixed-capacity FIFO of pulse durations in microseconds.
// Appending at capacity evicts the oldest entry, so the buffer always
// holds the most recent durations in insertion order.
// Not safe for concurrent use — callers must synchronize.
type Buffer struct {
	buf      []uint32
	capacity int
	head     int // next write position
	count    int
}

// New creates an empty Buffer holding up to capacity durations.
func New(capacity int) *Buffer {
	return &Buffer{
		buf:      make([]uint32, capacity),
		capacity: capacity,
	}
}

// Append stores v, evicting the oldest duration if the buffer is full.
// It never fails.
func (b *Buffer) Append(v uint32) {
	b.buf[b.head] = v
	b.head = (b.head + 1) % b.capacity
	if b.count < b.capacity {
		b.count++
	}
	// At capacity head already pointed at the oldest entry, which the
	// write above overwrote.
}

// PopOldest removes and returns the oldest duration.
func (b *Buffer) PopOldest() (uint32, error) {
	if b.count == 0 {
		return 0, ErrEmpty
	}
	start := (b.head - b.count + b.capacity) % b.capacity
	v := b.buf[start]
	b.count--
	return v, nil
}

// Peek returns the duration at logical index i without removing it.
// Index 0 is the oldest entry; negative indexes count back from the
// newest, so -1 is the most recent duration.
func (b *Buffer) Peek(i int) (uint32, error) {
	if i < -b.count || i >= b.count {
		return 0, ErrOutOfRange
	}
	if i < 0 {
		i += b.count
	}
	start := (b.head - b.count + b.capacity) % b.capacity
	return b.buf[(start+i)%b.capacity], nil
}

// Len returns the number of stored durations.
func (b *Buffer) Len() int {
	return b.count
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.head = 0
	b.count = 0
}

// Snapshot returns a copy of the stored durations, oldest first.
// The buffer is left unchanged.
func (b *Buffer) Snapshot() []uint32 {
	if b.count == 0 {
		return nil
	}
	out := make([]uint32, b.count)
	start := (b.head - b.count + b.capacity) % b.capacity
	for i := 0; i < b.count; i++ {
		out[i] = b.buf[(start+i)%b.capacity]
	}
	return out
}
