package middleware

import (
	"fmt"
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/lbliii/chirp"
)

// RecoveryConfig contains configuration for the recovery middleware.
type RecoveryConfig struct {
	// Skipper defines a function to skip the middleware.
	Skipper Skipper

	// Logger logs recovered panics with their stack traces.
	Logger *zap.Logger

	// StackSize caps the captured stack trace. Defaults to 4 KB.
	StackSize int

	// DisableStackAll limits the trace to the panicking goroutine.
	DisableStackAll bool
}

// DefaultRecoveryConfig returns the default configuration.
func DefaultRecoveryConfig() *RecoveryConfig {
	return &RecoveryConfig{
		Skipper:   DefaultSkipper,
		StackSize: 4 << 10,
	}
}

// Recovery returns a middleware that converts handler panics into 500
// signals, so the error pipeline produces a well-formed response instead of a
// torn connection.
func Recovery() MiddlewareFunc {
	return RecoveryWithConfig(DefaultRecoveryConfig())
}

// RecoveryWithConfig returns a recovery middleware with custom configuration.
func RecoveryWithConfig(config *RecoveryConfig) MiddlewareFunc {
	if config == nil {
		config = DefaultRecoveryConfig()
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if config.StackSize == 0 {
		config.StackSize = 4 << 10
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (v any, err error) {
			if config.Skipper(c) {
				return next(c)
			}
			defer func() {
				if r := recover(); r != nil {
					cause, ok := r.(error)
					if !ok {
						cause = fmt.Errorf("%v", r)
					}

					stack := make([]byte, config.StackSize)
					stack = stack[:runtime.Stack(stack, !config.DisableStackAll)]

					logger := config.Logger
					if logger == nil {
						logger = c.Logger()
					}
					logger.Error("panic recovered",
						zap.Error(cause),
						zap.String("method", c.Method()),
						zap.String("path", c.Path()),
						zap.String("stack", string(stack)))

					v = nil
					err = chirp.NewHTTPError(http.StatusInternalServerError).WithInternal(cause)
				}
			}()
			return next(c)
		}
	}
}
