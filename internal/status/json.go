package status

import (
	"encoding/json"
	"time"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string     `json:"event,omitempty"`
	Reason        string     `json:"reason,omitempty"`
	State         string     `json:"state"`
	BufferLen     int        `json:"buffer_len"`
	Recorded      uint64     `json:"recorded"`
	UptimeSeconds int64      `json:"uptime_seconds"`
	StartTime     string     `json:"start_time"`
	Timestamp     string     `json:"timestamp"`
	MQTT          MQTTStatus `json:"mqtt"`
	Config        ConfigJSON `json:"config"`
}

// MQTTStatus reports command channel connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Chip        string `json:"chip"`
	Offset      int    `json:"offset"`
	ActiveLow   bool   `json:"active_low"`
	Capacity    int    `json:"capacity"`
	TimeoutUs   int64  `json:"timeout_us"`
	CoarseClock bool   `json:"coarse_clock"`
	TopicBase   string `json:"topic_base"`
	HTTPAddr    string `json:"http_addr,omitempty"`
}

func buildInner(snap Snapshot) StatusInner {
	state := "CAPTURING"
	if snap.Paused {
		state = "PAUSED"
	}

	return StatusInner{
		State:         state,
		BufferLen:     snap.BufferLen,
		Recorded:      snap.Recorded,
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Config: ConfigJSON{
			Chip:        snap.Config.Chip,
			Offset:      snap.Config.Offset,
			ActiveLow:   snap.Config.ActiveLow,
			Capacity:    snap.Config.Capacity,
			TimeoutUs:   snap.Config.TimeoutUs,
			CoarseClock: snap.Config.CoarseClock,
			TopicBase:   snap.Config.TopicBase,
			HTTPAddr:    snap.Config.HTTPAddr,
		},
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	data, _ := json.MarshalIndent(StatusJSON{Status: buildInner(snap)}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status document published to the
// command channel on session lifecycle events (STARTUP, SHUTDOWN,
// TIMEOUT).
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
