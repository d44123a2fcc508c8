package capture

import (
	"fmt"
	"time"

	"github.com/sweeney/pulsein/internal/line"
)

// Pulse drives the line to the non-idle level for d, then returns it to
// idle and restores input mode. The hold uses a busy-wait: time.Sleep
// rounds to scheduler granularity, far too coarse for microsecond
// pulses. The caller must hold the line lock for the whole call, since
// the polling engine reads the same line.
func Pulse(l line.Line, idleHigh bool, d time.Duration) error {
	active, idle := 1, 0
	if idleHigh {
		active, idle = 0, 1
	}

	if err := l.ReconfigureOutput(active); err != nil {
		return fmt.Errorf("request output: %w", err)
	}
	spinWait(d)
	if err := l.SetValue(idle); err != nil {
		return fmt.Errorf("drive idle: %w", err)
	}
	if err := l.ReconfigureInput(); err != nil {
		return fmt.Errorf("restore input: %w", err)
	}
	return nil
}

func spinWait(d time.Duration) {
	deadline := time.Now().Add(d)
	for time.Now().Before(deadline) {
	}
}
