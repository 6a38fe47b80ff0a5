package chirp

// MIME types.
const (
	MIMEApplicationJSON = "application/json"
	MIMETextPlain       = "text/plain; charset=utf-8"
	MIMETextHTML        = "text/html; charset=utf-8"
	MIMEOctetStream     = "application/octet-stream"
	MIMETextEventStream = "text/event-stream"
	MIMEApplicationForm = "application/x-www-form-urlencoded"
	MIMEMultipartForm   = "multipart/form-data"
)

// Common header names.
const (
	HeaderAccept        = "Accept"
	HeaderAllow         = "Allow"
	HeaderCacheControl  = "Cache-Control"
	HeaderConnection    = "Connection"
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderLocation      = "Location"
	HeaderOrigin        = "Origin"
	HeaderVary          = "Vary"
	HeaderXForwardedFor = "X-Forwarded-For"
	HeaderXRealIP       = "X-Real-Ip"
	HeaderXRequestID    = "X-Request-Id"

	HeaderAccessControlRequestMethod    = "Access-Control-Request-Method"
	HeaderAccessControlRequestHeaders   = "Access-Control-Request-Headers"
	HeaderAccessControlAllowOrigin      = "Access-Control-Allow-Origin"
	HeaderAccessControlAllowMethods     = "Access-Control-Allow-Methods"
	HeaderAccessControlAllowHeaders     = "Access-Control-Allow-Headers"
	HeaderAccessControlAllowCredentials = "Access-Control-Allow-Credentials"
	HeaderAccessControlMaxAge           = "Access-Control-Max-Age"
)
