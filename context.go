package chirp

import (
	"context"
	"strconv"

	"go.uber.org/zap"
)

// Context carries one request through the middleware chain and handler. The
// request snapshot is immutable; the key/value store is request-scoped
// mutable state that dies with the request and never leaks across
// connections.
type Context struct {
	app    *App
	req    *Request
	writer *responseWriter
	route  *Route
	store  map[string]any
	typed  map[string]any
}

func newContext(a *App, rw *responseWriter, req *Request) *Context {
	return &Context{app: a, writer: rw, req: req}
}

// Request returns the current request snapshot.
func (c *Context) Request() *Request { return c.req }

// SetRequest replaces the request snapshot. Middleware uses this to hand a
// rewritten request to the rest of the chain.
func (c *Context) SetRequest(req *Request) { c.req = req }

// Response returns the wrapped response writer, mostly useful to middleware
// observing what was committed.
func (c *Context) Response() ResponseWriter { return c.writer }

// Method returns the request method.
func (c *Context) Method() string { return c.req.Method }

// Path returns the request path.
func (c *Context) Path() string { return c.req.Path }

// Route returns the matched route, or nil before matching.
func (c *Context) Route() *Route { return c.route }

// Param returns the raw string value of a path parameter.
func (c *Context) Param(name string) string { return c.req.Param(name) }

// ParamValue returns the path parameter converted per the route's declared
// type: int64 for integer, float64 for float, string otherwise. A value that
// fails conversion comes back as its raw string rather than an error.
func (c *Context) ParamValue(name string) any {
	if v, ok := c.typed[name]; ok {
		return v
	}
	return c.req.Param(name)
}

// ParamInt returns an integer path parameter, or defaultValue when the
// parameter is absent or not an integer.
func (c *Context) ParamInt(name string, defaultValue int) int {
	if v, ok := c.typed[name].(int64); ok {
		return int(v)
	}
	if n, err := strconv.Atoi(c.req.Param(name)); err == nil {
		return n
	}
	return defaultValue
}

// Query returns the first query parameter value for name.
func (c *Context) Query(name string) string { return c.req.Query.Get(name) }

// QueryInt returns a query parameter as int with a default.
func (c *Context) QueryInt(name string, defaultValue int) int {
	if n, err := strconv.Atoi(c.req.Query.Get(name)); err == nil {
		return n
	}
	return defaultValue
}

// Get retrieves request-scoped data stored by middleware.
func (c *Context) Get(key string) any { return c.store[key] }

// Set stores request-scoped data.
func (c *Context) Set(key string, val any) {
	if c.store == nil {
		c.store = make(map[string]any)
	}
	c.store[key] = val
}

// Logger returns the application logger.
func (c *Context) Logger() *zap.Logger { return c.app.logger }

// StdContext returns the connection context, cancelled on disconnect.
func (c *Context) StdContext() context.Context { return c.req.Context() }

// RealIP returns the client address.
func (c *Context) RealIP() string { return c.req.RealIP() }

// applyMatch attaches the matched route and its parameters: a derived request
// copy with the raw strings, plus values converted per the declared segment
// types with fallback to the raw string.
func (c *Context) applyMatch(m *RouteMatch) {
	c.route = m.Route
	c.req = c.req.WithParams(m.Params)
	if len(m.Params) == 0 {
		return
	}
	c.typed = make(map[string]any, len(m.Params))
	for name, raw := range m.Params {
		c.typed[name] = convertParam(raw, m.Route.kinds[name])
	}
}

func convertParam(raw string, kind ParamKind) any {
	switch kind {
	case ParamInteger:
		if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
			return n
		}
	case ParamFloat:
		if f, err := strconv.ParseFloat(raw, 64); err == nil {
			return f
		}
	}
	return raw
}
