package errors

import "time"

// ErrorResponse is the standardized error envelope. It is a plain value the
// content negotiator serializes; it also implements error so application code
// can return one directly.
type ErrorResponse struct {
	Success     bool           `json:"success"`
	ErrorDetail ErrorDetail    `json:"error"`
	Timestamp   time.Time      `json:"timestamp"`
	RequestID   string         `json:"request_id,omitempty"`
	Meta        map[string]any `json:"meta,omitempty"`
}

// ErrorDetail carries the code, message, and optional structured details.
type ErrorDetail struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	return e.ErrorDetail.Message
}

// New creates an error response with the given code and message.
func New(code ErrorCode, message string) *ErrorResponse {
	return &ErrorResponse{
		Success: false,
		ErrorDetail: ErrorDetail{
			Code:    code.Int(),
			Message: message,
		},
		Timestamp: time.Now().UTC(),
	}
}

// NewFromCode creates an error response using the code's default message.
func NewFromCode(code ErrorCode) *ErrorResponse {
	return New(code, code.Message())
}

// WithRequestID attaches the request id to the envelope.
func (e *ErrorResponse) WithRequestID(requestID string) *ErrorResponse {
	e.RequestID = requestID
	return e
}

// WithDetail adds a single key to the detail map.
func (e *ErrorResponse) WithDetail(key string, value any) *ErrorResponse {
	if e.ErrorDetail.Details == nil {
		e.ErrorDetail.Details = make(map[string]any)
	}
	e.ErrorDetail.Details[key] = value
	return e
}

// WithDetails replaces the detail map.
func (e *ErrorResponse) WithDetails(details map[string]any) *ErrorResponse {
	e.ErrorDetail.Details = details
	return e
}

// WithMeta attaches metadata to the envelope.
func (e *ErrorResponse) WithMeta(meta map[string]any) *ErrorResponse {
	e.Meta = meta
	return e
}
