// Package command applies control messages from the message channel to
// the capture session: the pause gate, the history buffer, and the line
// during trigger pulses.
package command

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/sweeney/pulsein/internal/capture"
	"github.com/sweeney/pulsein/internal/history"
	"github.com/sweeney/pulsein/internal/line"
	"github.com/sweeney/pulsein/internal/msgq"
)

// Command tags. Each message is a single tag byte followed by optional
// decimal-ASCII argument bytes.
const (
	TagPause   = 'p'
	TagResume  = 'r'
	TagClear   = 'c'
	TagLength  = 'l'
	TagTrigger = 't' // t<µs>: resume, then emit an output pulse
	TagPeek    = 'i' // i<idx>: indexed peek, negative counts from newest
	TagPop     = '^'
)

// sentinel is the universal "not available" reply.
const sentinel = "-1"

// Server dispatches commands received on the message channel. State
// mutation happens under the same locks the polling engine uses, so
// every command is visible to the engine by its next loop iteration.
type Server struct {
	ch       msgq.Channel
	gate     *capture.Gate
	hist     *history.Buffer
	histMu   *sync.Mutex
	line     line.Line
	lineMu   *sync.Mutex
	idleHigh bool
}

// New creates a Server sharing the history and line locks with the
// polling engine.
func New(ch msgq.Channel, gate *capture.Gate, hist *history.Buffer, histMu *sync.Mutex, l line.Line, lineMu *sync.Mutex, idleHigh bool) *Server {
	return &Server{
		ch:       ch,
		gate:     gate,
		hist:     hist,
		histMu:   histMu,
		line:     l,
		lineMu:   lineMu,
		idleHigh: idleHigh,
	}
}

// Run processes commands until ctx is done. The receive is
// non-blocking; with nothing pending the server parks on the channel's
// ready signal rather than spinning.
func (s *Server) Run(ctx context.Context) error {
	for {
		msg, ok := s.ch.ReceiveNonblocking()
		if !ok {
			select {
			case <-ctx.Done():
				return nil
			case <-s.ch.Ready():
			}
			continue
		}
		if err := s.handle(msg); err != nil {
			return err
		}
	}
}

// handle applies one command. Malformed or unrecognized messages are
// dropped without a reply: a corrupt message must not stall a live
// capture session. Only a failed trigger pulse is fatal.
func (s *Server) handle(msg []byte) error {
	if len(msg) == 0 {
		return nil
	}
	tag, arg := msg[0], string(msg[1:])

	switch tag {
	case TagPause:
		s.gate.Close()

	case TagResume:
		s.gate.Open()

	case TagClear:
		s.histMu.Lock()
		s.hist.Reset()
		s.histMu.Unlock()

	case TagLength:
		s.histMu.Lock()
		n := s.hist.Len()
		s.histMu.Unlock()
		s.reply(strconv.Itoa(n))

	case TagTrigger:
		us, err := strconv.ParseUint(arg, 10, 32)
		if err != nil {
			return nil
		}
		// Take the line before opening the gate: the engine's first
		// post-resume read then lands after the pulse, so its baseline
		// starts at the pulse's completion.
		s.lineMu.Lock()
		s.gate.Open()
		err = capture.Pulse(s.line, s.idleHigh, time.Duration(us)*time.Microsecond)
		s.lineMu.Unlock()
		if err != nil {
			return fmt.Errorf("trigger pulse: %w", err)
		}

	case TagPop:
		s.histMu.Lock()
		v, err := s.hist.PopOldest()
		s.histMu.Unlock()
		if err != nil {
			s.reply(sentinel)
		} else {
			s.reply(strconv.FormatUint(uint64(v), 10))
		}

	case TagPeek:
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return nil
		}
		s.histMu.Lock()
		v, err := s.hist.Peek(idx)
		s.histMu.Unlock()
		if err != nil {
			s.reply(sentinel)
		} else {
			s.reply(strconv.FormatUint(uint64(v), 10))
		}

	default:
		// Unknown tag: availability over strict validation.
	}
	return nil
}

func (s *Server) reply(text string) {
	if err := s.ch.Send([]byte(text)); err != nil {
		log.Printf("command: send reply: %v", err)
	}
}
