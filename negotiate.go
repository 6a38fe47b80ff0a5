package chirp

import (
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	"github.com/lbliii/chirp/sse"
)

// NegotiationError reports a handler return value the negotiator has no rule
// for. Arbitrary values are never silently stringified.
type NegotiationError struct {
	Value any
}

func (e *NegotiationError) Error() string {
	return fmt.Sprintf("chirp: cannot negotiate a response from handler value of type %T", e.Value)
}

// Negotiate maps a handler return value to exactly one Response variant using
// defaultStatus wherever the value does not carry its own status. The rules,
// in priority order: a Response passes through unchanged; a *Result recurses
// on its body and then applies the status/header overrides; strings become
// buffered text; byte slices become buffered binary; maps, slices, and
// structs are serialized as JSON; a *View is delegated to the renderer
// collaborator; an *sse.Stream becomes a push-stream response; nil becomes
// 204 No Content. Anything else is a NegotiationError.
func (a *App) Negotiate(v any, defaultStatus int) (Response, error) {
	switch t := v.(type) {
	case nil:
		return NoContent(http.StatusNoContent), nil
	case Response:
		return t, nil
	case *Result:
		return a.negotiateResult(t, defaultStatus)
	case Result:
		return a.negotiateResult(&t, defaultStatus)
	case string:
		return Text(defaultStatus, t), nil
	case []byte:
		return Blob(defaultStatus, MIMEOctetStream, t), nil
	case *View:
		return a.renderView(t, defaultStatus)
	case *sse.Stream:
		return &pushResponse{stream: t}, nil
	case json.Marshaler:
		return a.negotiateJSON(t, defaultStatus)
	default:
		switch kind := indirectKind(v); kind {
		case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
			return a.negotiateJSON(v, defaultStatus)
		default:
			return nil, &NegotiationError{Value: v}
		}
	}
}

func (a *App) negotiateResult(res *Result, defaultStatus int) (Response, error) {
	status := res.Code
	if status == 0 {
		status = defaultStatus
	}
	if _, nested := res.Body.(*Result); nested {
		return nil, fmt.Errorf("chirp: nested Result values are not negotiable")
	}
	resp, err := a.Negotiate(res.Body, status)
	if err != nil {
		return nil, err
	}
	if res.Code != 0 {
		switch r := resp.(type) {
		case *Buffered:
			r.Code = res.Code
		case *Stream:
			r.Code = res.Code
		}
		// A push-stream response keeps its fixed success status.
	}
	copyHeader(resp.Header(), res.Header)
	return resp, nil
}

func (a *App) negotiateJSON(v any, status int) (Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("chirp: serializing %T response: %w", v, err)
	}
	return Blob(status, MIMEApplicationJSON, body), nil
}

// renderView delegates to the rendering collaborator and wraps the result:
// streaming when the renderer is progressive, buffered otherwise.
func (a *App) renderView(v *View, status int) (Response, error) {
	if a.renderer == nil {
		return nil, fmt.Errorf("chirp: handler returned view %q but no renderer is configured", v.Name)
	}
	if sr, progressive := a.renderer.(StreamRenderer); progressive {
		r, err := sr.RenderStream(v.Name, v.Data)
		if err != nil {
			return nil, fmt.Errorf("chirp: rendering %q: %w", v.Name, err)
		}
		return &Stream{Code: status, ContentType: MIMETextHTML, Reader: r}, nil
	}
	body, err := a.renderer.Render(v.Name, v.Data)
	if err != nil {
		return nil, fmt.Errorf("chirp: rendering %q: %w", v.Name, err)
	}
	return Blob(status, MIMETextHTML, body), nil
}

// indirectKind unwraps pointers so handlers can return *T structs directly.
func indirectKind(v any) reflect.Kind {
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return reflect.Invalid
		}
		rv = rv.Elem()
	}
	return rv.Kind()
}
