package capture

import "time"

// Clock measures the time since the last baseline mark. The engine
// selects one implementation at startup: WallClock where the host has a
// usable high-resolution clock, TickClock where it does not.
type Clock interface {
	// Mark resets the baseline to now.
	Mark()

	// Tick notes one polling iteration.
	Tick()

	// Elapsed reports the time since the last Mark.
	Elapsed() time.Duration
}

// WallClock measures elapsed time with the host monotonic clock.
type WallClock struct {
	base time.Time
	now  func() time.Time
}

// NewWallClock creates a WallClock marked at the current time.
func NewWallClock() *WallClock {
	w := &WallClock{now: time.Now}
	w.Mark()
	return w
}

// Mark resets the baseline to now.
func (w *WallClock) Mark() {
	if w.now == nil {
		w.now = time.Now
	}
	w.base = w.now()
}

// Tick is a no-op: wall time advances on its own.
func (w *WallClock) Tick() {}

// Elapsed reports the time since the last Mark.
func (w *WallClock) Elapsed() time.Duration {
	return w.now().Sub(w.base)
}

// TickClock counts polling iterations and scales them by the calibrated
// cost of a single line read. On hosts with a coarse clock the loop
// iteration itself is the most uniform time source available.
type TickClock struct {
	ticks   uint64
	perTick time.Duration
}

// NewTickClock creates a TickClock scaling iterations by perTick.
func NewTickClock(perTick time.Duration) *TickClock {
	return &TickClock{perTick: perTick}
}

// Mark resets the iteration count.
func (c *TickClock) Mark() {
	c.ticks = 0
}

// Tick notes one polling iteration.
func (c *TickClock) Tick() {
	c.ticks++
}

// Elapsed reports ticks × per-tick cost since the last Mark.
func (c *TickClock) Elapsed() time.Duration {
	return time.Duration(c.ticks) * c.perTick
}
