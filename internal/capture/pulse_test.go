package capture

import (
	"errors"
	"testing"
	"time"

	"github.com/sweeney/pulsein/internal/line"
)

func TestPulseIdleLow(t *testing.T) {
	l := line.NewFakeLine(0)

	start := time.Now()
	if err := Pulse(l, false, 200*time.Microsecond); err != nil {
		t.Fatalf("Pulse: %v", err)
	}
	held := time.Since(start)

	// Output at the active level, back to idle, then input restored.
	want := []string{"output=1", "set=0", "input"}
	got := l.OpsSnapshot()
	if len(got) != len(want) {
		t.Fatalf("Ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ops[%d] = %q, want %q", i, got[i], want[i])
		}
	}

	if held < 200*time.Microsecond {
		t.Errorf("pulse held for %v, want at least 200µs", held)
	}
}

func TestPulseIdleHigh(t *testing.T) {
	l := line.NewFakeLine(1)

	if err := Pulse(l, true, 50*time.Microsecond); err != nil {
		t.Fatalf("Pulse: %v", err)
	}

	want := []string{"output=0", "set=1", "input"}
	got := l.OpsSnapshot()
	if len(got) != len(want) {
		t.Fatalf("Ops = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Ops[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPulseReconfigureError(t *testing.T) {
	boom := errors.New("boom")
	l := line.NewFakeLine(0)
	l.ReconfigureErr = boom

	if err := Pulse(l, false, 10*time.Microsecond); !errors.Is(err, boom) {
		t.Errorf("Pulse = %v, want wrapped reconfigure error", err)
	}
}

func TestPulseSetError(t *testing.T) {
	boom := errors.New("boom")
	l := line.NewFakeLine(0)
	l.SetErr = boom

	if err := Pulse(l, false, 10*time.Microsecond); !errors.Is(err, boom) {
		t.Errorf("Pulse = %v, want wrapped set error", err)
	}
}
