package errors

import (
	"errors"
	"sync"
)

// Mapping describes how a registered business error translates to an HTTP
// response.
type Mapping struct {
	Code       ErrorCode
	HTTPStatus int
	Message    string
}

// Registry maps business errors to HTTP responses. Lookups match with
// errors.Is, so both sentinel errors and wrapped errors resolve.
type Registry struct {
	mu      sync.RWMutex
	targets []error
	byErr   map[error]*Mapping
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{byErr: make(map[error]*Mapping)}
}

var defaultRegistry = NewRegistry()

// Register adds a mapping to the default registry.
func Register(err error, code ErrorCode, httpStatus int, message string) {
	defaultRegistry.Register(err, code, httpStatus, message)
}

// Lookup consults the default registry.
func Lookup(err error) (*Mapping, bool) {
	return defaultRegistry.Lookup(err)
}

// Register maps a business error to an error code and HTTP status. An empty
// message or zero status falls back to the code's defaults.
func (r *Registry) Register(err error, code ErrorCode, httpStatus int, message string) {
	if err == nil {
		return
	}
	if message == "" {
		message = code.Message()
	}
	if httpStatus == 0 {
		httpStatus = code.HTTPStatus()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, seen := r.byErr[err]; !seen {
		r.targets = append(r.targets, err)
	}
	r.byErr[err] = &Mapping{Code: code, HTTPStatus: httpStatus, Message: message}
}

// Lookup finds the mapping for err, matching wrapped errors via errors.Is.
// Registration order breaks ties.
func (r *Registry) Lookup(err error) (*Mapping, bool) {
	if err == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, target := range r.targets {
		if errors.Is(err, target) {
			return r.byErr[target], true
		}
	}
	return nil, false
}
