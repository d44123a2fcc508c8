package capture

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sweeney/pulsein/internal/history"
	"github.com/sweeney/pulsein/internal/line"
)

// ErrSessionEnd reports that capture finished on its own terms: the
// timeout elapsed with no edge, or the requested pulse count was
// reached. The caller flushes the history and exits successfully.
var ErrSessionEnd = errors.New("capture: session ended")

// Config carries the capture parameters for an Engine.
type Config struct {
	// IdleHigh selects the resting level of the line: true means the
	// line idles high and pulses are active-low.
	IdleHigh bool

	// Timeout ends the session when no edge arrives for this long.
	// Zero means never time out.
	Timeout time.Duration

	// MaxPulses ends the session after this many recorded durations.
	// Zero means no limit.
	MaxPulses int
}

// Engine is the edge polling loop. It busy-polls the line with no
// voluntary yield, trading CPU for sampling latency, and appends
// inter-edge durations to the shared history buffer.
type Engine struct {
	cfg    Config
	line   line.Line
	lineMu *sync.Mutex
	hist   *history.Buffer
	histMu *sync.Mutex
	gate   *Gate
	clock  Clock

	recorded atomic.Uint64
}

// NewEngine creates an Engine sharing the line and history locks with
// the command server.
func NewEngine(cfg Config, l line.Line, lineMu *sync.Mutex, hist *history.Buffer, histMu *sync.Mutex, gate *Gate, clock Clock) *Engine {
	return &Engine{
		cfg:    cfg,
		line:   l,
		lineMu: lineMu,
		hist:   hist,
		histMu: histMu,
		gate:   gate,
		clock:  clock,
	}
}

// Recorded returns the number of durations recorded so far.
func (e *Engine) Recorded() uint64 {
	return e.recorded.Load()
}

// Run polls the line until ctx is done, a read fails, or the session
// ends (ErrSessionEnd). Each iteration waits at the pause gate, reads
// the level under the line lock, and compares it to the previous level;
// a change is an edge and the elapsed time since the last edge is the
// duration of the pulse that just finished. Cancellation takes effect
// even while a closed gate holds the engine at the barrier.
//
// The first departure from idle after start or resume is the trigger
// edge, not a measured pulse, and is suppressed. The comparison level
// starts at idle, so a line that is already non-idle at start produces
// an immediate synthetic departure that is likewise suppressed; the
// following return to idle is recorded, measuring the time since
// capture (re)started.
func (e *Engine) Run(ctx context.Context) error {
	idle := 0
	if e.cfg.IdleHigh {
		idle = 1
	}

	prev := idle
	awaiting := true
	lastGen, err := e.gate.Wait(ctx)
	if err != nil {
		return err
	}
	e.clock.Mark()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		gen, err := e.gate.Wait(ctx)
		if err != nil {
			return err
		}

		e.lineMu.Lock()
		v, err := e.line.Value()
		e.lineMu.Unlock()
		if err != nil {
			return fmt.Errorf("read line: %w", err)
		}
		e.clock.Tick()

		if gen != lastGen {
			// A pause or trigger happened since the last iteration. The
			// interval spanning it is meaningless: restart measurement.
			// The locked read above already waited out any trigger
			// pulse, so the new baseline starts at its completion.
			lastGen = gen
			prev = idle
			awaiting = true
			e.clock.Mark()
			continue
		}

		elapsed := e.clock.Elapsed()

		if e.cfg.Timeout > 0 && elapsed >= e.cfg.Timeout {
			return ErrSessionEnd
		}

		if v == prev {
			continue
		}

		if awaiting && v != idle {
			awaiting = false
		} else {
			e.histMu.Lock()
			e.hist.Append(uint32(elapsed / time.Microsecond))
			e.histMu.Unlock()
			n := e.recorded.Add(1)
			if e.cfg.MaxPulses > 0 && n >= uint64(e.cfg.MaxPulses) {
				return ErrSessionEnd
			}
		}
		prev = v
		e.clock.Mark()
	}
}
