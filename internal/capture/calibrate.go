package capture

import (
	"fmt"
	"time"

	"github.com/sweeney/pulsein/internal/line"
)

// readCostSamples is the number of reads averaged by ReadCost.
const readCostSamples = 100

// ReadCost measures the average cost of one line read by timing a burst
// of back-to-back reads on a line already configured as an input. The
// result scales a TickClock on hosts without a usable high-resolution
// clock. The line stays requested; the caller keeps using the same
// handle for capture.
func ReadCost(l line.Line) (time.Duration, error) {
	start := time.Now()
	for i := 0; i < readCostSamples; i++ {
		if _, err := l.Value(); err != nil {
			return 0, fmt.Errorf("calibration read: %w", err)
		}
	}
	return time.Since(start) / readCostSamples, nil
}
