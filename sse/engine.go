package sse

import (
	"context"
	"errors"
	"net/http"
	"time"
)

// ErrStreamingUnsupported is returned before any headers are written when the
// transport writer cannot flush, so the caller can still fail the request
// with a normal status.
var ErrStreamingUnsupported = errors.New("sse: response writer does not support streaming")

// Serve runs the push protocol on w until the event sequence is exhausted,
// the client disconnects (ctx is cancelled), or the producer fails.
//
// The engine owns the connection for its lifetime. It sends the success
// status and push headers exactly once, then pulls events from the producer,
// racing each pull against the heartbeat interval. Two concurrent activities
// exist while streaming: the producer goroutine and this loop, which doubles
// as the disconnect monitor by selecting on ctx.Done(). Whichever side
// finishes first wins; producer cancellation is always awaited to completion,
// and any event a cancelled producer managed to send is discarded rather than
// written, so no frame can follow the start of shutdown. The terminating
// flush runs in a deferred block so a mid-stream failure never leaves a
// half-open connection.
func Serve(ctx context.Context, w http.ResponseWriter, s *Stream) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return ErrStreamingUnsupported
	}

	// OPENING: after this point the status can no longer change and all
	// failures are communicated in-band.
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()
	defer flusher.Flush()

	pctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan Event)
	done := make(chan error, 1)
	go func() {
		err := s.producer(pctx, events)
		close(events)
		done <- err
	}()

	heartbeat := time.NewTimer(s.heartbeat)
	defer heartbeat.Stop()

	var writeErr error

	// STREAMING, with the idle-heartbeat self-loop.
stream:
	for {
		select {
		case ev, open := <-events:
			if !open {
				// Sequence exhausted; the producer already returned.
				break stream
			}
			if _, err := ev.WriteTo(w); err != nil {
				writeErr = err
				break stream
			}
			flusher.Flush()
			resetTimer(heartbeat, s.heartbeat)
		case <-heartbeat.C:
			if err := writeComment(w, ""); err != nil {
				writeErr = err
				break stream
			}
			flusher.Flush()
			heartbeat.Reset(s.heartbeat)
		case <-ctx.Done():
			break stream
		}
	}

	// CLOSING: cancel the producer and await its completion. Events it
	// sends while winding down are drained and dropped, never written.
	cancel()
	for range events {
	}
	perr := <-done

	switch {
	case ctx.Err() != nil:
		// Client disconnect: nothing more can be delivered.
		return ctx.Err()
	case writeErr != nil:
		return writeErr
	case perr != nil && !errors.Is(perr, context.Canceled):
		// Unexpected producer failure after headers: emit one in-band
		// error indicator frame while the connection is still writable.
		ev := Event{Type: "error", Data: "stream terminated"}
		if _, err := ev.WriteTo(w); err == nil {
			flusher.Flush()
		}
		return perr
	default:
		return nil
	}
}

// resetTimer restarts the heartbeat window after a real event, draining a
// concurrent expiry so stale ticks cannot produce an immediate heartbeat.
func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
