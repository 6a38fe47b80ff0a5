package chirp

// HandlerFunc is the unit of request handling. It receives the per-request
// Context and returns a value for the content negotiator (any of the shapes
// understood by Negotiate) or an error for the error pipeline.
type HandlerFunc func(c *Context) (any, error)

// MiddlewareFunc wraps the next handler in the chain. A middleware may
// inspect or rewrite the request before calling next, decline to call next
// and return its own value (short-circuiting everything inside it), or call
// next and rewrite the returned value.
type MiddlewareFunc func(next HandlerFunc) HandlerFunc

// Chain composes an ordered list of middleware into a single handler. The
// first middleware added is outermost: it runs first on the way in and last
// on the way out. A Chain is immutable and stateless, so one chain built at
// startup serves every request.
type Chain struct {
	middlewares []MiddlewareFunc
}

// NewChain creates a chain from the given middleware.
func NewChain(middlewares ...MiddlewareFunc) *Chain {
	return &Chain{
		middlewares: append([]MiddlewareFunc(nil), middlewares...),
	}
}

// Then terminates the chain with h and returns the composed handler. Applying
// the list in reverse makes the first-registered middleware the outermost
// wrapper.
func (c *Chain) Then(h HandlerFunc) HandlerFunc {
	if h == nil {
		h = func(*Context) (any, error) { return nil, nil }
	}
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		h = c.middlewares[i](h)
	}
	return h
}

// Append returns a new chain with the given middleware added after the
// existing ones. The receiver is left unmodified.
func (c *Chain) Append(middlewares ...MiddlewareFunc) *Chain {
	next := &Chain{
		middlewares: make([]MiddlewareFunc, len(c.middlewares)+len(middlewares)),
	}
	copy(next.middlewares, c.middlewares)
	copy(next.middlewares[len(c.middlewares):], middlewares)
	return next
}
