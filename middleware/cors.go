package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/lbliii/chirp"
)

// CORSConfig contains configuration for the CORS middleware.
type CORSConfig struct {
	// Skipper defines a function to skip the middleware.
	Skipper Skipper
	// AllowOrigins is a list of allowed origins.
	AllowOrigins []string
	// AllowMethods is a list of allowed methods.
	AllowMethods []string
	// AllowHeaders is a list of allowed request headers.
	AllowHeaders []string
	// ExposeHeaders is a list of headers exposed to the client.
	ExposeHeaders []string
	// AllowCredentials indicates whether requests may include credentials.
	AllowCredentials bool
	// MaxAge is how long, in seconds, preflight results may be cached.
	MaxAge int
}

// DefaultCORSConfig returns the default CORS configuration.
func DefaultCORSConfig() *CORSConfig {
	return &CORSConfig{
		Skipper:      DefaultSkipper,
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet,
			http.MethodHead,
			http.MethodPut,
			http.MethodPatch,
			http.MethodPost,
			http.MethodDelete,
		},
		AllowHeaders: []string{"*"},
	}
}

// CORS returns a middleware that handles cross-origin resource sharing,
// short-circuiting preflight requests without invoking the route handler.
func CORS() MiddlewareFunc {
	return CORSWithConfig(DefaultCORSConfig())
}

// CORSWithConfig returns a CORS middleware with custom configuration.
func CORSWithConfig(config *CORSConfig) MiddlewareFunc {
	if config == nil {
		config = DefaultCORSConfig()
	}
	if config.Skipper == nil {
		config.Skipper = DefaultSkipper
	}
	if len(config.AllowOrigins) == 0 {
		config.AllowOrigins = []string{"*"}
	}
	if len(config.AllowMethods) == 0 {
		config.AllowMethods = DefaultCORSConfig().AllowMethods
	}
	allowMethods := strings.Join(config.AllowMethods, ", ")

	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (any, error) {
			if config.Skipper(c) {
				return next(c)
			}
			req := c.Request()
			header := c.Response().Header()
			origin := req.Header.Get(chirp.HeaderOrigin)

			allowOrigin := ""
			for _, o := range config.AllowOrigins {
				if o == "*" || o == origin {
					allowOrigin = o
					break
				}
			}

			// Simple request: decorate and continue down the chain.
			if req.Method != http.MethodOptions {
				if allowOrigin != "" {
					header.Set(chirp.HeaderAccessControlAllowOrigin, allowOrigin)
				}
				if config.AllowCredentials {
					header.Set(chirp.HeaderAccessControlAllowCredentials, "true")
				}
				if len(config.ExposeHeaders) > 0 {
					header.Set("Access-Control-Expose-Headers", strings.Join(config.ExposeHeaders, ", "))
				}
				return next(c)
			}

			// Preflight: short-circuit with 204.
			header.Add(chirp.HeaderVary, chirp.HeaderOrigin)
			header.Add(chirp.HeaderVary, chirp.HeaderAccessControlRequestMethod)
			header.Add(chirp.HeaderVary, chirp.HeaderAccessControlRequestHeaders)

			if allowOrigin == "" {
				return chirp.NoContent(http.StatusNoContent), nil
			}

			header.Set(chirp.HeaderAccessControlAllowOrigin, allowOrigin)
			header.Set(chirp.HeaderAccessControlAllowMethods, allowMethods)
			if config.AllowCredentials {
				header.Set(chirp.HeaderAccessControlAllowCredentials, "true")
			}
			if len(config.AllowHeaders) > 0 {
				allowHeaders := strings.Join(config.AllowHeaders, ", ")
				if config.AllowHeaders[0] == "*" {
					if requested := req.Header.Get(chirp.HeaderAccessControlRequestHeaders); requested != "" {
						allowHeaders = requested
					}
				}
				header.Set(chirp.HeaderAccessControlAllowHeaders, allowHeaders)
			}
			if config.MaxAge > 0 {
				header.Set(chirp.HeaderAccessControlMaxAge, strconv.Itoa(config.MaxAge))
			}
			return chirp.NoContent(http.StatusNoContent), nil
		}
	}
}
