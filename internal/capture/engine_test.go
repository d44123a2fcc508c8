package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sweeney/pulsein/internal/history"
	"github.com/sweeney/pulsein/internal/line"
)

// errScriptDone ends engine test runs once the scripted levels are
// consumed, so every test drives the loop deterministically.
var errScriptDone = errors.New("script done")

type engineFixture struct {
	engine *Engine
	line   *line.FakeLine
	hist   *history.Buffer
	histMu *sync.Mutex
	gate   *Gate
}

// newEngineFixture builds an engine polling scripted levels with a
// tick clock advancing perTick per read.
func newEngineFixture(cfg Config, perTick time.Duration, levels ...int) *engineFixture {
	f := &engineFixture{
		line:   line.NewFakeLine(levels...),
		hist:   history.New(16),
		histMu: &sync.Mutex{},
		gate:   NewGate(),
	}
	f.line.ExhaustedErr = errScriptDone
	var lineMu sync.Mutex
	f.engine = NewEngine(cfg, f.line, &lineMu, f.hist, f.histMu, f.gate, NewTickClock(perTick))
	return f
}

func (f *engineFixture) run(t *testing.T) error {
	t.Helper()
	return f.engine.Run(context.Background())
}

func (f *engineFixture) durations() []uint32 {
	f.histMu.Lock()
	defer f.histMu.Unlock()
	return f.hist.Snapshot()
}

func assertDurations(t *testing.T, got []uint32, want ...uint32) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("recorded durations = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("duration[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

// Idle low, 50µs per read. The line goes high at t=0 (trigger edge,
// suppressed), low after 100µs, high again after 150µs more.
func TestEngineCapturesAlternatingDurations(t *testing.T) {
	f := newEngineFixture(Config{}, 50*time.Microsecond,
		0, // settled at idle
		1, // trigger edge: suppressed
		1,
		0, // high for 2 reads = 100µs
		0,
		0,
		1, // low for 3 reads = 150µs
	)

	err := f.run(t)
	if !errors.Is(err, errScriptDone) {
		t.Fatalf("Run = %v, want script-done error", err)
	}

	assertDurations(t, f.durations(), 100, 150)
	if f.engine.Recorded() != 2 {
		t.Errorf("Recorded = %d, want 2", f.engine.Recorded())
	}
}

func TestEngineIdleHigh(t *testing.T) {
	f := newEngineFixture(Config{IdleHigh: true}, 50*time.Microsecond,
		1, // settled at idle (high)
		0, // trigger edge: suppressed
		0,
		1, // low for 2 reads = 100µs
	)

	err := f.run(t)
	if !errors.Is(err, errScriptDone) {
		t.Fatalf("Run = %v, want script-done error", err)
	}

	assertDurations(t, f.durations(), 100)
}

// A line that is already non-idle at start produces a synthetic
// departure edge on the first read, which is suppressed like any other
// first edge; the return to idle is recorded.
func TestEngineLineNotAtIdleOnStart(t *testing.T) {
	f := newEngineFixture(Config{}, 50*time.Microsecond,
		1, // synthetic departure: suppressed
		1,
		0, // back to idle after 2 reads = 100µs: recorded
	)

	err := f.run(t)
	if !errors.Is(err, errScriptDone) {
		t.Fatalf("Run = %v, want script-done error", err)
	}

	assertDurations(t, f.durations(), 100)
}

// Pausing mid-measurement and resuming discards the in-progress
// interval: the first post-resume duration reflects only time elapsed
// after resume.
func TestEnginePauseResumeDiscardsInterval(t *testing.T) {
	f := newEngineFixture(Config{}, 50*time.Microsecond,
		0,
		1, // trigger edge: suppressed
		1, // pause+resume lands after this read
		1,
		0,
		0,
		1, // post-resume trigger edge: suppressed
		1,
		1,
		0, // high for 3 reads = 150µs after the suppressed edge
	)
	f.line.OnRead = func(n int) {
		if n == 2 {
			f.gate.Close()
			f.gate.Open()
		}
	}

	err := f.run(t)
	if !errors.Is(err, errScriptDone) {
		t.Fatalf("Run = %v, want script-done error", err)
	}

	// Only the post-resume pulse is recorded, and its duration counts
	// from the post-resume baseline.
	assertDurations(t, f.durations(), 150)
}

func TestEngineTimeoutEndsSession(t *testing.T) {
	f := newEngineFixture(Config{Timeout: 1000 * time.Microsecond}, 300*time.Microsecond,
		0, 0, 0, 0, 0, 0, 0, 0,
	)

	if err := f.run(t); !errors.Is(err, ErrSessionEnd) {
		t.Fatalf("Run = %v, want ErrSessionEnd", err)
	}
	assertDurations(t, f.durations())
}

// Timeout after some activity keeps the partial history for the flush.
func TestEngineTimeoutKeepsPartialHistory(t *testing.T) {
	f := newEngineFixture(Config{Timeout: 1000 * time.Microsecond}, 100*time.Microsecond,
		0,
		1, // suppressed
		0, // 100µs pulse recorded
		// hold-last: the line stays low until the timeout fires
	)
	f.line.ExhaustedErr = nil

	if err := f.run(t); !errors.Is(err, ErrSessionEnd) {
		t.Fatalf("Run = %v, want ErrSessionEnd", err)
	}
	assertDurations(t, f.durations(), 100)
}

func TestEngineMaxPulses(t *testing.T) {
	f := newEngineFixture(Config{MaxPulses: 2}, 50*time.Microsecond,
		0,
		1,       // suppressed
		0,       // recorded
		1,       // recorded: limit reached
		0, 1, 0, // never read
	)

	if err := f.run(t); !errors.Is(err, ErrSessionEnd) {
		t.Fatalf("Run = %v, want ErrSessionEnd", err)
	}
	if f.engine.Recorded() != 2 {
		t.Errorf("Recorded = %d, want 2", f.engine.Recorded())
	}
}

func TestEngineReadErrorIsFatal(t *testing.T) {
	f := newEngineFixture(Config{}, 50*time.Microsecond, 0)

	err := f.run(t)
	if err == nil || errors.Is(err, ErrSessionEnd) {
		t.Fatalf("Run = %v, want a fatal read error", err)
	}
	if !errors.Is(err, errScriptDone) {
		t.Errorf("Run = %v, want the wrapped read error", err)
	}
}

func TestEngineStopsOnContextCancel(t *testing.T) {
	f := newEngineFixture(Config{}, 50*time.Microsecond, 0)
	f.line.ExhaustedErr = nil

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := f.engine.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

// An interrupt must end the run even while a pause holds the engine at
// the gate; otherwise the shutdown flush would hang forever.
func TestEngineStopsOnContextCancelWhilePaused(t *testing.T) {
	f := newEngineFixture(Config{}, 50*time.Microsecond, 0)
	f.line.ExhaustedErr = nil
	f.gate.Close()

	ctx, cancel := context.WithCancel(context.Background())
	errs := make(chan error, 1)
	go func() { errs <- f.engine.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errs:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel while paused")
	}
}
