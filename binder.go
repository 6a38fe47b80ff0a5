package chirp

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// StructValidator validates a bound value. go-playground/validator's
// *validator.Validate satisfies it directly.
type StructValidator interface {
	Struct(s any) error
}

// Bind decodes the request body into i according to the Content-Type. JSON is
// the default. The body is consumed; a second Bind sees an empty body.
func (c *Context) Bind(i any) error {
	contentType := c.req.Header.Get(HeaderContentType)
	switch {
	case strings.HasPrefix(contentType, MIMEApplicationForm):
		return c.bindForm(i)
	default:
		return c.bindJSON(i)
	}
}

// Validate runs the application's validator against i. Validation failures
// come back as 400 signals so they flow through the error pipeline without
// extra handling.
func (c *Context) Validate(i any) error {
	if c.app.validator == nil {
		return NewHTTPError(http.StatusInternalServerError, "validator not registered")
	}
	if err := c.app.validator.Struct(i); err != nil {
		return NewHTTPError(http.StatusBadRequest, err.Error()).WithInternal(err)
	}
	return nil
}

func (c *Context) bindJSON(i any) error {
	body, err := io.ReadAll(c.req.Body())
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, "reading request body").WithInternal(err)
	}
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, i); err != nil {
		return NewHTTPError(http.StatusBadRequest, fmt.Sprintf("invalid JSON: %v", err)).WithInternal(err)
	}
	return nil
}

func (c *Context) bindForm(i any) error {
	body, err := io.ReadAll(c.req.Body())
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, "reading request body").WithInternal(err)
	}
	values, err := url.ParseQuery(string(body))
	if err != nil {
		return NewHTTPError(http.StatusBadRequest, "invalid form body").WithInternal(err)
	}
	flat := make(map[string]string, len(values))
	for key, vs := range values {
		if len(vs) > 0 {
			flat[key] = vs[0]
		}
	}
	// Round-trip through JSON so form bodies bind to the same tagged
	// structs JSON does.
	encoded, err := json.Marshal(flat)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(encoded, i); err != nil {
		return NewHTTPError(http.StatusBadRequest, "binding form body").WithInternal(err)
	}
	return nil
}
