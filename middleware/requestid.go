package middleware

import (
	"github.com/google/uuid"
	"github.com/lbliii/chirp"
)

// RequestIDKey is the context store key under which the request id is saved.
const RequestIDKey = "request_id"

// RequestIDConfig defines the config for the RequestID middleware.
type RequestIDConfig struct {
	// Skipper defines a function to skip the middleware.
	Skipper Skipper

	// Generator creates a new id. Defaults to UUID v4.
	Generator func() string

	// TargetHeader is the header checked for an existing id and set on the
	// response. Defaults to X-Request-Id.
	TargetHeader string
}

// DefaultRequestIDConfig is the default RequestID middleware config.
var DefaultRequestIDConfig = RequestIDConfig{
	Skipper:      DefaultSkipper,
	Generator:    func() string { return uuid.New().String() },
	TargetHeader: chirp.HeaderXRequestID,
}

// RequestID returns a middleware that tags every request with a unique id,
// reusing the client-supplied one when present. The id is stored in the
// request context and echoed on the response.
func RequestID() MiddlewareFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

// RequestIDWithConfig returns a RequestID middleware with config.
func RequestIDWithConfig(config RequestIDConfig) MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultRequestIDConfig.Skipper
	}
	if config.Generator == nil {
		config.Generator = DefaultRequestIDConfig.Generator
	}
	if config.TargetHeader == "" {
		config.TargetHeader = DefaultRequestIDConfig.TargetHeader
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (any, error) {
			if config.Skipper(c) {
				return next(c)
			}
			rid := c.Request().Header.Get(config.TargetHeader)
			if rid == "" {
				rid = config.Generator()
			}
			c.Set(RequestIDKey, rid)
			c.Response().Header().Set(config.TargetHeader, rid)
			return next(c)
		}
	}
}
