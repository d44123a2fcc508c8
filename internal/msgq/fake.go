package msgq

import "sync"

// FakeChannel scripts inbound commands and records replies for test
// assertions.
type FakeChannel struct {
	mu sync.Mutex

	// inbound holds commands not yet received.
	inbound [][]byte

	// Replies contains everything passed to Send, in order.
	Replies [][]byte

	// StatusDocs contains everything passed to PublishStatus.
	StatusDocs [][]byte

	// SendError, if set, is returned by Send.
	SendError error

	// Closed tracks whether Close was called.
	Closed bool

	ready chan struct{}
}

// NewFakeChannel creates a FakeChannel with the given pending commands.
func NewFakeChannel(cmds ...[]byte) *FakeChannel {
	f := &FakeChannel{ready: make(chan struct{}, 1)}
	for _, c := range cmds {
		f.Push(c)
	}
	return f
}

// Push queues a command for the next ReceiveNonblocking.
func (f *FakeChannel) Push(cmd []byte) {
	f.mu.Lock()
	f.inbound = append(f.inbound, cmd)
	f.mu.Unlock()
	select {
	case f.ready <- struct{}{}:
	default:
	}
}

// ReceiveNonblocking returns the oldest queued command, if any.
func (f *FakeChannel) ReceiveNonblocking() ([]byte, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.inbound) == 0 {
		return nil, false
	}
	m := f.inbound[0]
	f.inbound = f.inbound[1:]
	return m, true
}

// Ready signals when a command may be pending.
func (f *FakeChannel) Ready() <-chan struct{} {
	return f.ready
}

// Send records the reply.
func (f *FakeChannel) Send(reply []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SendError != nil {
		return f.SendError
	}
	f.Replies = append(f.Replies, reply)
	return nil
}

// PublishStatus records the status document.
func (f *FakeChannel) PublishStatus(payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.StatusDocs = append(f.StatusDocs, payload)
	return nil
}

// RepliesSnapshot returns a copy of the recorded replies as strings.
func (f *FakeChannel) RepliesSnapshot() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.Replies))
	for i, r := range f.Replies {
		out[i] = string(r)
	}
	return out
}

// Close marks the channel as closed.
func (f *FakeChannel) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Closed = true
	return nil
}
