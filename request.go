package chirp

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Request is an immutable snapshot of an inbound request: method, path,
// headers, query and path parameters, and connection metadata. Only the body
// has internal cursor state; everything else never changes after
// construction. A derived copy carrying path parameters is produced by
// WithParams after routing.
type Request struct {
	Method     string
	Path       string
	Proto      string
	Host       string
	Header     http.Header
	Query      url.Values
	RemoteAddr string
	TLS        bool

	params map[string]string
	body   io.ReadCloser
	ctx    context.Context
}

// NewRequest snapshots a transport-level request. The body is not consumed;
// it is pulled lazily by the first reader and yields nothing once exhausted.
func NewRequest(r *http.Request) *Request {
	return &Request{
		Method:     r.Method,
		Path:       r.URL.Path,
		Proto:      r.Proto,
		Host:       r.Host,
		Header:     r.Header,
		Query:      r.URL.Query(),
		RemoteAddr: r.RemoteAddr,
		TLS:        r.TLS != nil,
		body:       r.Body,
		ctx:        r.Context(),
	}
}

// WithParams returns a copy of the request with path parameters attached.
// The receiver is unmodified.
func (r *Request) WithParams(params map[string]string) *Request {
	dup := *r
	dup.params = params
	return &dup
}

// Param returns the raw string value of a path parameter, or "".
func (r *Request) Param(name string) string {
	return r.params[name]
}

// Params returns the path parameter map. Callers must not mutate it.
func (r *Request) Params() map[string]string {
	return r.params
}

// Body returns the lazy request body. Reading past the end yields io.EOF;
// there is no rewind.
func (r *Request) Body() io.ReadCloser {
	if r.body == nil {
		return http.NoBody
	}
	return r.body
}

// Context returns the connection's context. It is cancelled when the client
// disconnects or the server shuts down.
func (r *Request) Context() context.Context {
	if r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// RealIP returns the client address, honoring X-Forwarded-For and X-Real-Ip
// when present.
func (r *Request) RealIP() string {
	if fwd := r.Header.Get(HeaderXForwardedFor); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			fwd = fwd[:i]
		}
		return strings.TrimSpace(fwd)
	}
	if ip := r.Header.Get(HeaderXRealIP); ip != "" {
		return ip
	}
	host := r.RemoteAddr
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return host
}
