// Package middleware provides standard cross-cutting middleware for chirp
// applications: request ids, panic recovery, access logging, CORS, and rate
// limiting.
package middleware

import "github.com/lbliii/chirp"

// Aliases so middleware signatures read naturally at call sites.
type (
	HandlerFunc    = chirp.HandlerFunc
	MiddlewareFunc = chirp.MiddlewareFunc
	Context        = chirp.Context
)

// Skipper decides per request whether a middleware should be bypassed.
type Skipper func(c *Context) bool

// DefaultSkipper processes the middleware for every request.
func DefaultSkipper(*Context) bool { return false }
