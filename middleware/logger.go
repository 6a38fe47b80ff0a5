package middleware

import (
	"time"

	"go.uber.org/zap"
)

// LoggerConfig contains configuration for the access log middleware.
type LoggerConfig struct {
	// Skipper defines a function to skip the middleware.
	Skipper Skipper

	// Logger receives one entry per request. Defaults to the application
	// logger.
	Logger *zap.Logger
}

// Logger returns an access log middleware.
func Logger() MiddlewareFunc {
	return LoggerWithConfig(LoggerConfig{})
}

// LoggerWithConfig returns an access log middleware with config. The entry is
// emitted once the response status line is committed, so it reports the final
// status even though the body is written after the chain returns.
func LoggerWithConfig(config LoggerConfig) MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (any, error) {
			if config.Skipper(c) {
				return next(c)
			}
			logger := config.Logger
			if logger == nil {
				logger = c.Logger()
			}

			start := time.Now()
			method, path, ip := c.Method(), c.Path(), c.RealIP()
			res := c.Response()
			res.After(func() {
				logger.Info("request",
					zap.String("method", method),
					zap.String("path", path),
					zap.String("remote_ip", ip),
					zap.Int("status", res.Status()),
					zap.Duration("latency", time.Since(start)))
			})
			return next(c)
		}
	}
}
