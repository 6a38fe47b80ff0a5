package chirp

import (
	"context"
	"io"
	"net/http"

	"github.com/lbliii/chirp/sse"
)

// Response is a fully negotiated wire response. Exactly one Response is
// produced and written per request. WriteTo must send the response-start
// message exactly once followed by the complete body.
type Response interface {
	// Status returns the status code the response will commit.
	Status() int
	// Header returns the response headers, mutable until WriteTo runs.
	Header() http.Header
	// WriteTo sends the response. ctx is the connection context and is
	// cancelled on client disconnect.
	WriteTo(ctx context.Context, w http.ResponseWriter) error
}

// Buffered is a complete in-memory response: status, headers, body.
type Buffered struct {
	Code        int
	ContentType string
	Body        []byte

	header http.Header
}

func (b *Buffered) Status() int { return b.Code }

func (b *Buffered) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *Buffered) WriteTo(_ context.Context, w http.ResponseWriter) error {
	copyHeader(w.Header(), b.header)
	if b.ContentType != "" && w.Header().Get(HeaderContentType) == "" {
		w.Header().Set(HeaderContentType, b.ContentType)
	}
	w.WriteHeader(b.Code)
	if len(b.Body) == 0 {
		return nil
	}
	_, err := w.Write(b.Body)
	return err
}

// Stream sends the body as a lazy sequence of chunks pulled from Reader,
// flushing after each chunk, terminated by exhaustion of the reader.
type Stream struct {
	Code        int
	ContentType string
	Reader      io.Reader

	header http.Header
}

func (s *Stream) Status() int { return s.Code }

func (s *Stream) Header() http.Header {
	if s.header == nil {
		s.header = make(http.Header)
	}
	return s.header
}

func (s *Stream) WriteTo(ctx context.Context, w http.ResponseWriter) error {
	copyHeader(w.Header(), s.header)
	if s.ContentType != "" && w.Header().Get(HeaderContentType) == "" {
		w.Header().Set(HeaderContentType, s.ContentType)
	}
	w.WriteHeader(s.Code)
	flusher, _ := w.(http.Flusher)
	buf := make([]byte, 4096)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := s.Reader.Read(buf)
		if n > 0 {
			if _, werr := w.Write(buf[:n]); werr != nil {
				return werr
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// pushResponse adapts an sse.Stream into a Response. The status is fixed to
// 200: once the push headers are sent, all later failures are in-band.
type pushResponse struct {
	stream *sse.Stream
	header http.Header
}

func (p *pushResponse) Status() int { return http.StatusOK }

func (p *pushResponse) Header() http.Header {
	if p.header == nil {
		p.header = make(http.Header)
	}
	return p.header
}

func (p *pushResponse) WriteTo(ctx context.Context, w http.ResponseWriter) error {
	copyHeader(w.Header(), p.header)
	return sse.Serve(ctx, w, p.stream)
}

// Result is the negotiator's tuple shape: a body plus status and header
// overrides. The negotiator recurses on Body and then applies the overrides,
// so handlers can return Result{Body: "created", Code: 201}.
type Result struct {
	Body   any
	Code   int
	Header http.Header
}

// View marks a handler return value as renderable by the application's
// Renderer collaborator. The core never inspects template syntax; it only
// forwards Name and Data and wraps whatever comes back.
type View struct {
	Name string
	Data any
}

// Render is a convenience constructor for View values.
func Render(name string, data any) *View {
	return &View{Name: name, Data: data}
}

// Renderer is the external rendering collaborator: given a template
// identifier and a context value it returns the rendered text.
type Renderer interface {
	Render(name string, data any) ([]byte, error)
}

// StreamRenderer is an optional upgrade for progressive renderers. When the
// application's Renderer also implements StreamRenderer, views are sent as
// chunked streaming responses instead of buffered ones.
type StreamRenderer interface {
	RenderStream(name string, data any) (io.Reader, error)
}

// Text builds a buffered plain-text response.
func Text(code int, s string) *Buffered {
	return &Buffered{Code: code, ContentType: MIMETextPlain, Body: []byte(s)}
}

// HTML builds a buffered HTML response.
func HTML(code int, markup string) *Buffered {
	return &Buffered{Code: code, ContentType: MIMETextHTML, Body: []byte(markup)}
}

// Blob builds a buffered response with an explicit content type.
func Blob(code int, contentType string, body []byte) *Buffered {
	return &Buffered{Code: code, ContentType: contentType, Body: body}
}

// NoContent builds an empty response with the given status.
func NoContent(code int) *Buffered {
	return &Buffered{Code: code}
}

// Redirect builds a redirect response.
func Redirect(code int, location string) *Buffered {
	b := &Buffered{Code: code}
	b.Header().Set(HeaderLocation, location)
	return b
}

func copyHeader(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}
