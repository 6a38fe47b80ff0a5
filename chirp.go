// Package chirp is the request-handling core of an HTTP application
// framework: it compiles routes into an immutable matching table, composes
// middleware around route dispatch, negotiates handler return values into
// wire responses, and hands push-stream responses to the server-push engine
// in the sse subpackage.
//
// An App is assembled once at startup and is read-only afterwards: the
// compiled route table and the composed middleware chain are consulted
// concurrently without locking.
//
//	app := chirp.New(chirp.WithLogger(logger))
//	app.Use(middleware.RequestID(), middleware.Recovery())
//	app.GET("/users/{id:integer}", func(c *chirp.Context) (any, error) {
//		return map[string]any{"id": c.ParamValue("id")}, nil
//	})
//	app.Start(":8080")
package chirp

import (
	"context"
	"net/http"
	"sync"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ErrorHandler is a caller-registered converter for a failed request. It
// receives the request context and the triggering error, and returns any
// value the content negotiator can process.
type ErrorHandler func(c *Context, err error) any

type typedErrorHandler struct {
	target  error
	handler ErrorHandler
}

// App is the dispatcher: the single entry point invoked once per inbound
// connection. It is the only component that touches transport primitives
// directly.
type App struct {
	router      *Router
	middlewares []MiddlewareFunc
	handler     HandlerFunc

	logger    *zap.Logger
	debug     bool
	renderer  Renderer
	validator StructValidator

	statusHandlers map[int]ErrorHandler
	typeHandlers   []typedErrorHandler

	ready  sync.Once
	mu     sync.Mutex
	server *http.Server
}

// Option configures an App before its first request.
type Option func(*App)

// WithLogger sets the structured logger used by the dispatch pipeline.
func WithLogger(logger *zap.Logger) Option {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithDebug enables diagnostic detail in 500-class response bodies. Errors
// are logged either way.
func WithDebug(debug bool) Option {
	return func(a *App) { a.debug = debug }
}

// WithRenderer sets the rendering collaborator used for View values.
func WithRenderer(r Renderer) Option {
	return func(a *App) { a.renderer = r }
}

// WithValidator replaces the default go-playground validator.
func WithValidator(v StructValidator) Option {
	return func(a *App) { a.validator = v }
}

// New creates an App. Register routes, middleware, and error handlers before
// the first request; the table freezes when serving starts.
func New(opts ...Option) *App {
	a := &App{
		router:         NewRouter(),
		logger:         zap.NewNop(),
		validator:      validator.New(),
		statusHandlers: make(map[int]ErrorHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Router exposes the underlying router, e.g. for reverse lookups.
func (a *App) Router() *Router { return a.router }

// Use appends middleware to the chain. The first middleware added is
// outermost: it sees the request first and the response last.
func (a *App) Use(m ...MiddlewareFunc) {
	a.middlewares = append(a.middlewares, m...)
}

// Handle registers a route for the given methods and returns it for naming.
// Invalid patterns are configuration errors and panic immediately, at
// startup, never during a request.
func (a *App) Handle(pattern string, h HandlerFunc, methods ...string) *Route {
	rt, err := a.router.Handle(pattern, h, methods...)
	if err != nil {
		panic(err)
	}
	return rt
}

// GET registers a GET route.
func (a *App) GET(pattern string, h HandlerFunc) *Route {
	return a.Handle(pattern, h, http.MethodGet)
}

// POST registers a POST route.
func (a *App) POST(pattern string, h HandlerFunc) *Route {
	return a.Handle(pattern, h, http.MethodPost)
}

// PUT registers a PUT route.
func (a *App) PUT(pattern string, h HandlerFunc) *Route {
	return a.Handle(pattern, h, http.MethodPut)
}

// DELETE registers a DELETE route.
func (a *App) DELETE(pattern string, h HandlerFunc) *Route {
	return a.Handle(pattern, h, http.MethodDelete)
}

// PATCH registers a PATCH route.
func (a *App) PATCH(pattern string, h HandlerFunc) *Route {
	return a.Handle(pattern, h, http.MethodPatch)
}

// HEAD registers a HEAD route.
func (a *App) HEAD(pattern string, h HandlerFunc) *Route {
	return a.Handle(pattern, h, http.MethodHead)
}

// OPTIONS registers an OPTIONS route.
func (a *App) OPTIONS(pattern string, h HandlerFunc) *Route {
	return a.Handle(pattern, h, http.MethodOptions)
}

// HandleError registers a handler for responses with the given status code.
// The handler's return value is negotiated with that status as the default.
func (a *App) HandleError(status int, h ErrorHandler) {
	a.statusHandlers[status] = h
}

// HandleErrorType registers a handler for errors matching target via
// errors.Is. Type handlers are consulted before status handlers.
func (a *App) HandleErrorType(target error, h ErrorHandler) {
	a.typeHandlers = append(a.typeHandlers, typedErrorHandler{target: target, handler: h})
}

// initialize compiles the route table and composes the middleware chain.
// Compilation failures are configuration errors and fail fast.
func (a *App) initialize() {
	if err := a.router.Compile(); err != nil {
		panic(err)
	}
	a.handler = NewChain(a.middlewares...).Then(a.dispatch)
}

// Start serves on addr until Shutdown. Timeouts are owned by the caller's
// deployment configuration; note that a server write timeout would also cut
// off long-lived push streams.
func (a *App) Start(addr string) error {
	a.ready.Do(a.initialize)
	a.mu.Lock()
	a.server = &http.Server{Addr: addr, Handler: a}
	srv := a.server
	a.mu.Unlock()
	a.logger.Info("server starting", zap.String("addr", addr))
	return srv.ListenAndServe()
}

// Shutdown gracefully stops a server started with Start.
func (a *App) Shutdown(ctx context.Context) error {
	a.mu.Lock()
	srv := a.server
	a.mu.Unlock()
	if srv == nil {
		return nil
	}
	a.logger.Info("server shutting down")
	return srv.Shutdown(ctx)
}
