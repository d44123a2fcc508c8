// Package capture implements the pulse capture core: the pause gate,
// the timing strategies, the output pulse driver, and the polling
// engine that turns line edges into recorded durations.
package capture

import (
	"context"
	"sync"
)

// Gate is the pause barrier between the command server and the polling
// engine. It starts open. The engine calls Wait every iteration; the
// command server flips the gate and returns immediately, it never waits
// for the engine to observe the change.
type Gate struct {
	mu     sync.Mutex
	cond   *sync.Cond
	closed bool
	gen    uint64
}

// NewGate creates an open Gate.
func NewGate() *Gate {
	g := &Gate{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

// Close pauses the engine at its next Wait.
func (g *Gate) Close() {
	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
}

// Open releases an engine blocked in Wait. Open always starts a new
// generation, even when the gate was not closed: a trigger pulse may
// occupy the line while the gate is open, and the engine must restart
// measurement afterwards either way.
func (g *Gate) Open() {
	g.mu.Lock()
	g.closed = false
	g.gen++
	g.mu.Unlock()
	g.cond.Broadcast()
}

// Closed reports whether the gate is currently closed.
func (g *Gate) Closed() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.closed
}

// Wait blocks while the gate is closed and returns the current
// generation. The generation changes on every Open, so a caller seeing
// a new generation knows a pause or trigger happened since its last
// visit even if it never blocked.
//
// A done ctx unblocks the wait and returns ctx's error, so a paused
// engine can still be shut down.
func (g *Gate) Wait(ctx context.Context) (uint64, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.closed {
		// The broadcast takes the lock so it cannot land between the
		// ctx.Err check below and the cond.Wait that follows it.
		stop := context.AfterFunc(ctx, func() {
			g.mu.Lock()
			defer g.mu.Unlock()
			g.cond.Broadcast()
		})
		defer stop()
		for g.closed {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			g.cond.Wait()
		}
	}
	return g.gen, nil
}
