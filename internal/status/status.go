// Package status provides a thread-safe status tracker for the pulsein
// daemon. It is read by the HTTP handlers and serialized into the
// retained status document on the command channel.
package status

import (
	"sync"
	"time"
)

// Config contains daemon configuration for display.
type Config struct {
	Chip        string
	Offset      int
	ActiveLow   bool
	Capacity    int
	TimeoutUs   int64
	CoarseClock bool
	Broker      string
	TopicBase   string
	HTTPAddr    string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	Paused        bool
	BufferLen     int
	Recorded      uint64
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the capture-side state. Called from the refresh loop.
func (t *Tracker) Update(paused bool, bufferLen int, recorded uint64) {
	t.mu.Lock()
	t.snap.Paused = paused
	t.snap.BufferLen = bufferLen
	t.snap.Recorded = recorded
	t.mu.Unlock()
}

// SetMQTTConnected sets the command channel connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
