package sse

import (
	"context"
	"time"
)

// DefaultHeartbeat is the idle interval after which the engine emits a
// comment frame to keep the connection alive.
const DefaultHeartbeat = 15 * time.Second

// Producer generates the outbound event sequence. It sends events on the
// channel until the sequence is exhausted, then returns nil. It must honor
// ctx: when the engine cancels it (client disconnect or shutdown), the
// producer must stop sending and return promptly. Returning a non-nil error
// signals an unexpected mid-stream failure.
type Producer func(ctx context.Context, events chan<- Event) error

// Stream is the push-stream handle a handler returns: a lazy, possibly
// infinite event sequence plus heartbeat configuration. The engine runs only
// when the transport layer drains the response.
type Stream struct {
	producer  Producer
	heartbeat time.Duration
}

// Option configures a Stream.
type Option func(*Stream)

// WithHeartbeat overrides the idle heartbeat interval.
func WithHeartbeat(d time.Duration) Option {
	return func(s *Stream) {
		if d > 0 {
			s.heartbeat = d
		}
	}
}

// NewStream wraps a producer into a push-stream handle.
func NewStream(p Producer, opts ...Option) *Stream {
	s := &Stream{producer: p, heartbeat: DefaultHeartbeat}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Heartbeat returns the configured idle heartbeat interval.
func (s *Stream) Heartbeat() time.Duration { return s.heartbeat }
