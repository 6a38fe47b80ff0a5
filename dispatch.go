package chirp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"

	"go.uber.org/zap"

	chirperrors "github.com/lbliii/chirp/errors"
)

// ServeHTTP runs one request through the pipeline: snapshot the request, run
// the composed chain (ending in route match, handler invocation, and
// negotiation), convert failures through the error pipeline, and write
// exactly one response. Whatever branch is taken, the connection always gets
// a response start and a terminating body.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.ready.Do(a.initialize)

	rw := newResponseWriter(w)
	c := newContext(a, rw, NewRequest(r))

	defer func() {
		if rec := recover(); rec != nil {
			stack := make([]byte, 4<<10)
			stack = stack[:runtime.Stack(stack, false)]
			a.logger.Error("panic during dispatch",
				zap.Any("panic", rec),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("stack", string(stack)))
			if !rw.Written() {
				a.writeFallback(rw, fmt.Sprintf("panic: %v", rec))
			}
		}
	}()

	v, err := a.handler(c)

	var resp Response
	if err == nil {
		resp, err = a.Negotiate(v, http.StatusOK)
	}
	if err != nil {
		resp = a.errorResponse(c, err)
	}

	if rw.Written() {
		// A middleware already took over the transport.
		return
	}
	if err := resp.WriteTo(c.StdContext(), rw); err != nil {
		a.logger.Warn("writing response",
			zap.Error(err),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path))
		if !rw.Written() {
			a.writeFallback(rw, err.Error())
		}
	}
}

// dispatch is the terminal handler of the middleware chain: match the route,
// invoke the user handler, negotiate its return value. Routing failures
// propagate as data-like errors for the pipeline.
func (a *App) dispatch(c *Context) (any, error) {
	match, err := a.router.Match(c.req.Method, c.req.Path)
	if err != nil {
		return nil, err
	}
	c.applyMatch(match)
	v, err := match.Route.Handler(c)
	if err != nil {
		return nil, err
	}
	return a.Negotiate(v, http.StatusOK)
}

// errorResponse converts any dispatch failure into a Response. Routing
// failures and explicit status signals are first offered to caller-registered
// handlers; unexpected errors are always logged and become 500s whose bodies
// carry diagnostic detail only in debug mode.
func (a *App) errorResponse(c *Context, err error) Response {
	status := http.StatusInternalServerError
	message := ""
	var allowed []string
	expected := true

	var mna *MethodNotAllowedError
	var he *HTTPError
	switch {
	case errors.Is(err, ErrNotFound):
		status = http.StatusNotFound
	case errors.As(err, &mna):
		status = http.StatusMethodNotAllowed
		allowed = mna.Allowed
	case errors.As(err, &he):
		status = he.Code
		message = fmt.Sprint(he.Message)
		if he.Internal != nil {
			a.logger.Error("handler error",
				zap.Error(he.Internal),
				zap.Int("status", status),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()))
		}
	default:
		if m, ok := chirperrors.Lookup(err); ok {
			status = m.HTTPStatus
			message = m.Message
		} else {
			expected = false
			a.logger.Error("unhandled error",
				zap.Error(err),
				zap.String("method", c.Method()),
				zap.String("path", c.Path()))
		}
	}

	if resp := a.runErrorHandlers(c, err, status, allowed); resp != nil {
		return resp
	}

	code := chirperrors.CodeForStatus(status)
	if message == "" {
		message = code.Message()
	}
	env := chirperrors.New(code, message)
	if rid, ok := c.Get("request_id").(string); ok {
		env.WithRequestID(rid)
	}
	if !expected && a.debug {
		env.WithDetail("error", err.Error())
	}
	body, merr := json.Marshal(env)
	if merr != nil {
		return Text(status, message)
	}
	resp := Blob(status, MIMEApplicationJSON, body)
	applyAllow(resp, allowed)
	return resp
}

// runErrorHandlers offers the failure to registered handlers: type matches
// first (more specific), then the status code. A handler's return value is
// negotiated with the failure status as the default; a handler whose value
// cannot be negotiated is skipped rather than masking the original failure.
func (a *App) runErrorHandlers(c *Context, err error, status int, allowed []string) Response {
	for _, th := range a.typeHandlers {
		if errors.Is(err, th.target) {
			if resp := a.negotiateHandled(c, th.handler, err, status, allowed); resp != nil {
				return resp
			}
		}
	}
	if h, ok := a.statusHandlers[status]; ok {
		return a.negotiateHandled(c, h, err, status, allowed)
	}
	return nil
}

func (a *App) negotiateHandled(c *Context, h ErrorHandler, err error, status int, allowed []string) Response {
	resp, nerr := a.Negotiate(h(c, err), status)
	if nerr != nil {
		a.logger.Error("error handler produced non-negotiable value",
			zap.Error(nerr),
			zap.Int("status", status))
		return nil
	}
	applyAllow(resp, allowed)
	return resp
}

// applyAllow sets the Allow header a 405 must carry.
func applyAllow(resp Response, allowed []string) {
	if len(allowed) > 0 {
		resp.Header().Set(HeaderAllow, strings.Join(allowed, ", "))
	}
}

// writeFallback is the last-resort 500 used when the pipeline itself fails
// before anything was committed to the transport.
func (a *App) writeFallback(w http.ResponseWriter, detail string) {
	w.Header().Set(HeaderContentType, MIMEApplicationJSON)
	w.WriteHeader(http.StatusInternalServerError)
	env := chirperrors.NewFromCode(chirperrors.CodeInternalServerError)
	if a.debug {
		env.WithDetail("error", detail)
	}
	body, err := json.Marshal(env)
	if err != nil {
		body = []byte(`{"success":false,"error":{"code":3000,"message":"Internal server error"}}`)
	}
	w.Write(body)
}
