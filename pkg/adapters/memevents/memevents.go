// Package memevents is the engine's EventSink: a buffered, non-blocking
// fan-out bus. Grounded on the teacher's mockp2p.MockP2P dispatch loop,
// repurposed from gossiping state updates between nodes to fanning vault
// events out to gateway subscribers (the relational mirror, the websocket
// handler).
package memevents

import (
	"sync"

	"github.com/clearvault/vault/pkg/ports"
)

const defaultBuffer = 256

// Sink is a process-wide append-only event bus. Publish never blocks: a
// slow or absent subscriber only misses events, it never stalls the
// engine.
type Sink struct {
	mu          sync.Mutex
	subscribers []chan ports.Event
	buffer      int
}

// New returns an empty sink with the given per-subscriber channel buffer
// (defaultBuffer if bufferSize <= 0).
func New(bufferSize int) *Sink {
	if bufferSize <= 0 {
		bufferSize = defaultBuffer
	}
	return &Sink{buffer: bufferSize}
}

// Publish fans evt out to every current subscriber without blocking.
func (s *Sink) Publish(evt ports.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, ch := range s.subscribers {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribe registers a new channel and returns it as a receive-only view.
func (s *Sink) Subscribe() <-chan ports.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan ports.Event, s.buffer)
	s.subscribers = append(s.subscribers, ch)
	return ch
}
