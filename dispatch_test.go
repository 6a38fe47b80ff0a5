package chirp

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chirperrors "github.com/lbliii/chirp/errors"
)

func perform(app *App, method, target string, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(HeaderContentType, MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var env map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestDispatchJSONHandler(t *testing.T) {
	app := New()
	app.GET("/users/{id:integer}", func(c *Context) (any, error) {
		return map[string]any{"id": c.ParamValue("id")}, nil
	})

	rec := perform(app, http.MethodGet, "/users/42", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, MIMEApplicationJSON, rec.Header().Get(HeaderContentType))
	assert.JSONEq(t, `{"id":42}`, rec.Body.String())
}

func TestDispatchTypedParamConversion(t *testing.T) {
	app := New()
	app.GET("/i/{n:integer}/f/{x:float}/s/{s}", func(c *Context) (any, error) {
		_, nIsInt := c.ParamValue("n").(int64)
		_, xIsFloat := c.ParamValue("x").(float64)
		_, sIsString := c.ParamValue("s").(string)
		return map[string]bool{"n": nIsInt, "x": xIsFloat, "s": sIsString}, nil
	})

	rec := perform(app, http.MethodGet, "/i/7/f/2.5/s/abc", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"n":true,"x":true,"s":true}`, rec.Body.String())
}

func TestDispatchIntegerOverflowFallsBackToRawString(t *testing.T) {
	app := New()
	var got any
	app.GET("/n/{n:integer}", func(c *Context) (any, error) {
		got = c.ParamValue("n")
		return "ok", nil
	})

	// 21 digits: passes the route's digits check but overflows int64, so
	// the handler sees the raw string.
	rec := perform(app, http.MethodGet, "/n/999999999999999999999", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "999999999999999999999", got)
}

func TestDispatchNotFound(t *testing.T) {
	app := New()
	app.GET("/known", func(c *Context) (any, error) { return "ok", nil })

	rec := perform(app, http.MethodGet, "/unknown", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["success"])
}

func TestDispatchMalformedTypedParamIsNotFound(t *testing.T) {
	app := New()
	app.GET("/items/{id:integer}", func(c *Context) (any, error) { return "ok", nil })

	rec := perform(app, http.MethodGet, "/items/abc", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDispatchMethodNotAllowedCarriesAllow(t *testing.T) {
	app := New()
	app.GET("/things", func(c *Context) (any, error) { return "ok", nil })

	rec := perform(app, http.MethodPost, "/things", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get(HeaderAllow))
}

func TestDispatchExplicitStatusSignal(t *testing.T) {
	app := New()
	app.GET("/teapot", func(c *Context) (any, error) {
		return nil, NewHTTPError(http.StatusTeapot, "short and stout")
	})

	rec := perform(app, http.MethodGet, "/teapot", "")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.Contains(t, rec.Body.String(), "short and stout")
}

func TestDispatchStatusErrorHandler(t *testing.T) {
	app := New()
	app.GET("/known", func(c *Context) (any, error) { return "ok", nil })
	app.HandleError(http.StatusNotFound, func(c *Context, err error) any {
		return map[string]string{"missing": c.Path()}
	})

	rec := perform(app, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"missing":"/nope"}`, rec.Body.String())
}

func TestDispatchTypedErrorHandler(t *testing.T) {
	errBoom := errors.New("boom")
	app := New()
	app.GET("/boom", func(c *Context) (any, error) { return nil, errBoom })
	app.HandleErrorType(errBoom, func(c *Context, err error) any {
		return &Result{Body: "handled: " + err.Error(), Code: http.StatusBadGateway}
	})

	rec := perform(app, http.MethodGet, "/boom", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "handled: boom", rec.Body.String())
}

func TestDispatchErrorHandlerAllowHeaderSurvives(t *testing.T) {
	app := New()
	app.GET("/only-get", func(c *Context) (any, error) { return "ok", nil })
	app.HandleError(http.StatusMethodNotAllowed, func(c *Context, err error) any {
		return "custom 405"
	})

	rec := perform(app, http.MethodPut, "/only-get", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Equal(t, http.MethodGet, rec.Header().Get(HeaderAllow))
	assert.Equal(t, "custom 405", rec.Body.String())
}

func TestDispatchRegisteredBusinessError(t *testing.T) {
	errNoSuchOrder := errors.New("no such order")
	chirperrors.Register(errNoSuchOrder, chirperrors.CodeResourceNotFound, http.StatusNotFound, "order not found")

	app := New()
	app.GET("/orders/{id}", func(c *Context) (any, error) {
		return nil, errNoSuchOrder
	})

	rec := perform(app, http.MethodGet, "/orders/9", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "order not found")
}

func TestDispatchUnexpectedErrorHidesDetailByDefault(t *testing.T) {
	app := New()
	app.GET("/fail", func(c *Context) (any, error) {
		return nil, errors.New("database credentials rejected")
	})

	rec := perform(app, http.MethodGet, "/fail", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "database credentials")
}

func TestDispatchUnexpectedErrorDetailInDebug(t *testing.T) {
	app := New(WithDebug(true))
	app.GET("/fail", func(c *Context) (any, error) {
		return nil, errors.New("database credentials rejected")
	})

	rec := perform(app, http.MethodGet, "/fail", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "database credentials rejected")
}

func TestDispatchNegotiationFailureIs500(t *testing.T) {
	app := New()
	app.GET("/num", func(c *Context) (any, error) {
		return 42, nil
	})

	rec := perform(app, http.MethodGet, "/num", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestDispatchPanicStillAnswers(t *testing.T) {
	app := New()
	app.GET("/panic", func(c *Context) (any, error) {
		panic("unexpected")
	})

	rec := perform(app, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotEmpty(t, rec.Body.String())
}

func TestDispatchMiddlewareOrderObserved(t *testing.T) {
	var trace []string
	app := New()
	app.Use(tracer("m1", &trace), tracer("m2", &trace))
	app.GET("/", func(c *Context) (any, error) {
		trace = append(trace, "handler")
		return "ok", nil
	})

	perform(app, http.MethodGet, "/", "")
	assert.Equal(t, []string{"m1 in", "m2 in", "handler", "m2 out", "m1 out"}, trace)
}

func TestDispatchMiddlewareRewritesRequest(t *testing.T) {
	app := New()
	app.Use(func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (any, error) {
			req := c.Request()
			dup := *req
			dup.Path = "/rewritten"
			c.SetRequest(&dup)
			return next(c)
		}
	})
	app.GET("/rewritten", func(c *Context) (any, error) { return "reached", nil })

	rec := perform(app, http.MethodGet, "/original", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "reached", rec.Body.String())
}

func TestDispatchRequestScopedStoreDoesNotLeak(t *testing.T) {
	app := New()
	app.GET("/stash", func(c *Context) (any, error) {
		if prev := c.Get("seen"); prev != nil {
			return nil, errors.New("state leaked across requests")
		}
		c.Set("seen", true)
		return "ok", nil
	})

	for i := 0; i < 3; i++ {
		rec := perform(app, http.MethodGet, "/stash", "")
		require.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestDispatchBind(t *testing.T) {
	app := New()
	app.POST("/echo", func(c *Context) (any, error) {
		var m map[string]any
		if err := c.Bind(&m); err != nil {
			return nil, err
		}
		return m, nil
	})

	rec := perform(app, http.MethodPost, "/echo", `{"a":1}`)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"a":1}`, rec.Body.String())

	rec = perform(app, http.MethodPost, "/echo", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDispatchValidate(t *testing.T) {
	type signup struct {
		Email string `json:"email" validate:"required,email"`
	}
	app := New()
	app.POST("/signup", func(c *Context) (any, error) {
		var s signup
		if err := c.Bind(&s); err != nil {
			return nil, err
		}
		if err := c.Validate(&s); err != nil {
			return nil, err
		}
		return &Result{Body: s, Code: http.StatusCreated}, nil
	})

	rec := perform(app, http.MethodPost, "/signup", `{"email":"a@b.co"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = perform(app, http.MethodPost, "/signup", `{"email":"nope"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
