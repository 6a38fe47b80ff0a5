package chirp

import (
	"bufio"
	"net"
	"net/http"
)

// ResponseWriter extends http.ResponseWriter so middleware can observe what
// was ultimately sent. Before hooks run just before the status line is
// committed (headers may still be changed); After hooks run immediately
// after.
type ResponseWriter interface {
	http.ResponseWriter
	// Status returns the committed status code, or 200 before commit.
	Status() int
	// Size returns the number of body bytes written so far.
	Size() int64
	// Written reports whether the status line has been sent.
	Written() bool
	// Before registers a hook invoked just before WriteHeader commits.
	Before(fn func())
	// After registers a hook invoked right after WriteHeader commits.
	After(fn func())
	// Flush forwards to the underlying writer when it supports flushing.
	Flush()
}

// responseWriter wraps the transport writer and tracks status and size. It
// guarantees the response-start message goes out exactly once no matter how
// many times WriteHeader is called.
type responseWriter struct {
	http.ResponseWriter
	status  int
	size    int64
	written bool
	before  []func()
	after   []func()
}

var (
	_ http.ResponseWriter = (*responseWriter)(nil)
	_ http.Flusher        = (*responseWriter)(nil)
	_ ResponseWriter      = (*responseWriter)(nil)
)

func newResponseWriter(w http.ResponseWriter) *responseWriter {
	return &responseWriter{ResponseWriter: w}
}

func (rw *responseWriter) Status() int {
	if rw.status == 0 {
		return http.StatusOK
	}
	return rw.status
}

func (rw *responseWriter) Size() int64 { return rw.size }

func (rw *responseWriter) Written() bool { return rw.written }

func (rw *responseWriter) Before(fn func()) { rw.before = append(rw.before, fn) }

func (rw *responseWriter) After(fn func()) { rw.after = append(rw.after, fn) }

func (rw *responseWriter) WriteHeader(status int) {
	if rw.written {
		return
	}
	for _, fn := range rw.before {
		fn()
	}
	rw.status = status
	rw.written = true
	rw.ResponseWriter.WriteHeader(status)
	for _, fn := range rw.after {
		fn()
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	n, err := rw.ResponseWriter.Write(b)
	rw.size += int64(n)
	return n, err
}

func (rw *responseWriter) Flush() {
	if f, ok := rw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack lets WebSocket-style middleware take over the connection when the
// underlying writer supports it.
func (rw *responseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	if hj, ok := rw.ResponseWriter.(http.Hijacker); ok {
		return hj.Hijack()
	}
	return nil, nil, http.ErrNotSupported
}
