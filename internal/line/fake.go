package line

import (
	"fmt"
	"sync"
)

// FakeLine is a test double that returns scripted levels and journals
// every mode/value operation. Safe for concurrent use: the capture
// engine and the command server may touch it from different goroutines.
type FakeLine struct {
	mu sync.Mutex

	// Levels contains scripted values returned by Value, one per call.
	// After the script is exhausted Value returns the last level
	// repeatedly, or ExhaustedErr if it is set.
	Levels []int

	// ExhaustedErr, if set, is returned by Value once Levels runs out.
	ExhaustedErr error

	// OnRead, if set, is called with the read count before each
	// scripted level is returned. Tests use it to flip shared state at
	// an exact point in the polling loop.
	OnRead func(n int)

	// SetErr, if set, is returned by SetValue.
	SetErr error

	// ReconfigureErr, if set, is returned by the Reconfigure methods.
	ReconfigureErr error

	// Ops journals mode and value operations in order, e.g.
	// "output=1", "set=0", "input", "close".
	Ops []string

	// Closed tracks whether Close was called.
	Closed bool

	reads int
}

// NewFakeLine creates a FakeLine that returns the given levels in order.
func NewFakeLine(levels ...int) *FakeLine {
	return &FakeLine{Levels: levels}
}

// Value returns the next scripted level.
func (f *FakeLine) Value() (int, error) {
	f.mu.Lock()
	n := f.reads
	f.reads++
	hook := f.OnRead
	f.mu.Unlock()

	if hook != nil {
		hook(n)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.Levels) == 0 {
		return 0, fmt.Errorf("fake line: no levels scripted")
	}
	if n >= len(f.Levels) {
		if f.ExhaustedErr != nil {
			return 0, f.ExhaustedErr
		}
		n = len(f.Levels) - 1
	}
	return f.Levels[n], nil
}

// Reads returns how many times Value was called.
func (f *FakeLine) Reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reads
}

// SetValue journals the driven level.
func (f *FakeLine) SetValue(v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetErr != nil {
		return f.SetErr
	}
	f.Ops = append(f.Ops, fmt.Sprintf("set=%d", v))
	return nil
}

// ReconfigureOutput journals the switch to output mode.
func (f *FakeLine) ReconfigureOutput(v int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReconfigureErr != nil {
		return f.ReconfigureErr
	}
	f.Ops = append(f.Ops, fmt.Sprintf("output=%d", v))
	return nil
}

// ReconfigureInput journals the switch back to input mode.
func (f *FakeLine) ReconfigureInput() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ReconfigureErr != nil {
		return f.ReconfigureErr
	}
	f.Ops = append(f.Ops, "input")
	return nil
}

// Close marks the line as closed.
func (f *FakeLine) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	f.Ops = append(f.Ops, "close")
	return nil
}

// OpsSnapshot returns a copy of the operation journal.
func (f *FakeLine) OpsSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Ops))
	copy(out, f.Ops)
	return out
}
