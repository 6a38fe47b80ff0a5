// Package errors provides the standardized error response envelope for chirp
// applications: stable error codes, a JSON envelope the content negotiator
// can serialize, and a registry mapping business errors to HTTP statuses.
package errors

import "net/http"

// ErrorCode is a stable, machine-readable error code.
//
// Categories: 1xxx validation, 2xxx authentication/authorization, 3xxx
// system, 4xxx business logic.
type ErrorCode int

const (
	// Validation errors (1xxx)
	CodeValidationFailed ErrorCode = 1000
	CodeInvalidInput     ErrorCode = 1001
	CodeInvalidFormat    ErrorCode = 1003
	CodeInvalidJSON      ErrorCode = 1008

	// Authentication/Authorization errors (2xxx)
	CodeUnauthorized ErrorCode = 2000
	CodeForbidden    ErrorCode = 2005

	// System errors (3xxx)
	CodeInternalServerError ErrorCode = 3000
	CodeServiceUnavailable  ErrorCode = 3002
	CodeTimeout             ErrorCode = 3003
	CodeRateLimitExceeded   ErrorCode = 3004
	CodeNotImplemented      ErrorCode = 3006

	// Business logic errors (4xxx)
	CodeResourceNotFound  ErrorCode = 4001
	CodeMethodNotAllowed  ErrorCode = 4003
	CodeConflict          ErrorCode = 4005
	CodeResourceGone      ErrorCode = 4006
)

var errorMessages = map[ErrorCode]string{
	CodeValidationFailed:    "Validation failed",
	CodeInvalidInput:        "Invalid input provided",
	CodeInvalidFormat:       "Invalid format",
	CodeInvalidJSON:         "Invalid JSON payload",
	CodeUnauthorized:        "Authentication required",
	CodeForbidden:           "Access denied",
	CodeInternalServerError: "Internal server error",
	CodeServiceUnavailable:  "Service temporarily unavailable",
	CodeTimeout:             "Request timed out",
	CodeRateLimitExceeded:   "Rate limit exceeded",
	CodeNotImplemented:      "Not implemented",
	CodeResourceNotFound:    "Resource not found",
	CodeMethodNotAllowed:    "Method not allowed",
	CodeConflict:            "Resource conflict",
	CodeResourceGone:        "Resource no longer available",
}

var httpStatuses = map[ErrorCode]int{
	CodeValidationFailed:    http.StatusBadRequest,
	CodeInvalidInput:        http.StatusBadRequest,
	CodeInvalidFormat:       http.StatusBadRequest,
	CodeInvalidJSON:         http.StatusBadRequest,
	CodeUnauthorized:        http.StatusUnauthorized,
	CodeForbidden:           http.StatusForbidden,
	CodeInternalServerError: http.StatusInternalServerError,
	CodeServiceUnavailable:  http.StatusServiceUnavailable,
	CodeTimeout:             http.StatusGatewayTimeout,
	CodeRateLimitExceeded:   http.StatusTooManyRequests,
	CodeNotImplemented:      http.StatusNotImplemented,
	CodeResourceNotFound:    http.StatusNotFound,
	CodeMethodNotAllowed:    http.StatusMethodNotAllowed,
	CodeConflict:            http.StatusConflict,
	CodeResourceGone:        http.StatusGone,
}

// Int returns the numeric value of the code.
func (c ErrorCode) Int() int { return int(c) }

// Message returns the default human-readable message for the code.
func (c ErrorCode) Message() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown error"
}

// HTTPStatus returns the HTTP status the code maps to.
func (c ErrorCode) HTTPStatus() int {
	if status, ok := httpStatuses[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// CodeForStatus picks a default error code for a bare HTTP status. It covers
// the statuses the dispatch pipeline produces on its own.
func CodeForStatus(status int) ErrorCode {
	switch status {
	case http.StatusBadRequest:
		return CodeInvalidInput
	case http.StatusUnauthorized:
		return CodeUnauthorized
	case http.StatusForbidden:
		return CodeForbidden
	case http.StatusNotFound:
		return CodeResourceNotFound
	case http.StatusMethodNotAllowed:
		return CodeMethodNotAllowed
	case http.StatusConflict:
		return CodeConflict
	case http.StatusGone:
		return CodeResourceGone
	case http.StatusTooManyRequests:
		return CodeRateLimitExceeded
	case http.StatusNotImplemented:
		return CodeNotImplemented
	case http.StatusServiceUnavailable:
		return CodeServiceUnavailable
	case http.StatusGatewayTimeout:
		return CodeTimeout
	default:
		return CodeInternalServerError
	}
}
