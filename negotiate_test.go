package chirp

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lbliii/chirp/sse"
)

func TestNegotiateString(t *testing.T) {
	a := New()
	resp, err := a.Negotiate("hello", http.StatusOK)
	require.NoError(t, err)
	b, ok := resp.(*Buffered)
	require.True(t, ok)
	assert.Equal(t, http.StatusOK, b.Code)
	assert.Equal(t, MIMETextPlain, b.ContentType)
	assert.Equal(t, "hello", string(b.Body))
}

func TestNegotiateBytes(t *testing.T) {
	a := New()
	resp, err := a.Negotiate([]byte{0x1, 0x2}, http.StatusOK)
	require.NoError(t, err)
	b := resp.(*Buffered)
	assert.Equal(t, MIMEOctetStream, b.ContentType)
	assert.Equal(t, []byte{0x1, 0x2}, b.Body)
}

func TestNegotiateStructuredData(t *testing.T) {
	a := New()

	resp, err := a.Negotiate(map[string]string{"k": "v"}, http.StatusOK)
	require.NoError(t, err)
	b := resp.(*Buffered)
	assert.Equal(t, MIMEApplicationJSON, b.ContentType)
	assert.JSONEq(t, `{"k":"v"}`, string(b.Body))

	resp, err = a.Negotiate([]map[string]int{{"n": 1}, {"n": 2}}, http.StatusOK)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"n":1},{"n":2}]`, string(resp.(*Buffered).Body))

	type payload struct {
		Name string `json:"name"`
	}
	resp, err = a.Negotiate(&payload{Name: "x"}, http.StatusOK)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"x"}`, string(resp.(*Buffered).Body))
}

func TestNegotiateResultTuple(t *testing.T) {
	a := New()
	header := http.Header{}
	header.Set("X-Id", "7")
	resp, err := a.Negotiate(&Result{Body: "created", Code: 201, Header: header}, http.StatusOK)
	require.NoError(t, err)
	b := resp.(*Buffered)
	assert.Equal(t, 201, b.Code)
	assert.Equal(t, "created", string(b.Body))
	assert.Equal(t, "7", b.Header().Get("X-Id"))
}

func TestNegotiateResultWithoutStatusKeepsDefault(t *testing.T) {
	a := New()
	resp, err := a.Negotiate(&Result{Body: "fine"}, http.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, http.StatusAccepted, resp.Status())
}

func TestNegotiateResponsePassThrough(t *testing.T) {
	a := New()
	orig := Text(418, "teapot")
	resp, err := a.Negotiate(orig, http.StatusOK)
	require.NoError(t, err)
	assert.Same(t, orig, resp)
}

func TestNegotiateNilIsNoContent(t *testing.T) {
	a := New()
	resp, err := a.Negotiate(nil, http.StatusOK)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNoContent, resp.Status())
}

func TestNegotiateUnsupportedTypeFails(t *testing.T) {
	a := New()
	for _, v := range []any{42, 3.14, true, make(chan int)} {
		_, err := a.Negotiate(v, http.StatusOK)
		var ne *NegotiationError
		require.ErrorAs(t, err, &ne, "%T", v)
		assert.Contains(t, err.Error(), "cannot negotiate")
	}

	// The error names the offending runtime type.
	_, err := a.Negotiate(42, http.StatusOK)
	assert.Contains(t, err.Error(), "int")
}

type bufferedRenderer struct{}

func (bufferedRenderer) Render(name string, data any) ([]byte, error) {
	return []byte("<p>" + name + "</p>"), nil
}

type progressiveRenderer struct{ bufferedRenderer }

func (progressiveRenderer) RenderStream(name string, data any) (io.Reader, error) {
	return strings.NewReader("<p>" + name + "</p>"), nil
}

func TestNegotiateViewBuffered(t *testing.T) {
	a := New(WithRenderer(bufferedRenderer{}))
	resp, err := a.Negotiate(Render("home", nil), http.StatusOK)
	require.NoError(t, err)
	b := resp.(*Buffered)
	assert.Equal(t, MIMETextHTML, b.ContentType)
	assert.Equal(t, "<p>home</p>", string(b.Body))
}

func TestNegotiateViewProgressive(t *testing.T) {
	a := New(WithRenderer(progressiveRenderer{}))
	resp, err := a.Negotiate(Render("home", nil), http.StatusOK)
	require.NoError(t, err)
	s, ok := resp.(*Stream)
	require.True(t, ok)
	body, err := io.ReadAll(s.Reader)
	require.NoError(t, err)
	assert.Equal(t, "<p>home</p>", string(body))
}

func TestNegotiateViewWithoutRendererFails(t *testing.T) {
	a := New()
	_, err := a.Negotiate(Render("home", nil), http.StatusOK)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no renderer")
}

func TestNegotiatePushStream(t *testing.T) {
	a := New()
	stream := sse.NewStream(func(ctx context.Context, events chan<- sse.Event) error { return nil })
	resp, err := a.Negotiate(stream, http.StatusOK)
	require.NoError(t, err)
	// Push streams commit a fixed success status.
	assert.Equal(t, http.StatusOK, resp.Status())
}
