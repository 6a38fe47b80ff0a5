package chirp

import (
	"fmt"
	"net/http"
)

// HTTPError is the explicit status signal: application code returns one to
// respond with a specific status and detail without building a full
// Response. The error pipeline converts it, consulting any registered
// handler for the status first.
type HTTPError struct {
	Code     int    `json:"-"`
	Message  any    `json:"message"`
	Internal error  `json:"-"`
}

// NewHTTPError creates an HTTPError. With no message the standard status text
// is used.
func NewHTTPError(code int, message ...any) *HTTPError {
	he := &HTTPError{Code: code}
	if len(message) > 0 {
		he.Message = message[0]
	} else {
		he.Message = http.StatusText(code)
	}
	return he
}

// Error implements the error interface.
func (he *HTTPError) Error() string {
	if he.Internal != nil {
		return fmt.Sprintf("code=%d, message=%v: %v", he.Code, he.Message, he.Internal)
	}
	return fmt.Sprintf("code=%d, message=%v", he.Code, he.Message)
}

// Unwrap returns the wrapped internal error.
func (he *HTTPError) Unwrap() error { return he.Internal }

// WithInternal attaches an underlying cause without changing what the client
// sees.
func (he *HTTPError) WithInternal(err error) *HTTPError {
	he.Internal = err
	return he
}

// Common signals.
var (
	ErrBadRequest          = NewHTTPError(http.StatusBadRequest)
	ErrUnauthorized        = NewHTTPError(http.StatusUnauthorized)
	ErrForbidden           = NewHTTPError(http.StatusForbidden)
	ErrRequestTimeout      = NewHTTPError(http.StatusRequestTimeout)
	ErrTooManyRequests     = NewHTTPError(http.StatusTooManyRequests)
	ErrInternalServerError = NewHTTPError(http.StatusInternalServerError)
	ErrServiceUnavailable  = NewHTTPError(http.StatusServiceUnavailable)
)
