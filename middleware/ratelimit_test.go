package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateLimitShortCircuitsOverBurst(t *testing.T) {
	app := newTestApp(RateLimitWithConfig(&RateLimitConfig{Rate: 1, Burst: 2}))
	app.GET("/", func(c *Context) (any, error) { return "ok", nil })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "203.0.113.9:1234"
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRateLimitKeysAreIndependent(t *testing.T) {
	app := newTestApp(RateLimitWithConfig(&RateLimitConfig{Rate: 1, Burst: 1}))
	app.GET("/", func(c *Context) (any, error) { return "ok", nil })

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, send("203.0.113.1:1"))
	assert.Equal(t, http.StatusTooManyRequests, send("203.0.113.1:1"))
	assert.Equal(t, http.StatusOK, send("203.0.113.2:1"))
}

func TestRateLimitSkipper(t *testing.T) {
	app := newTestApp(RateLimitWithConfig(&RateLimitConfig{
		Rate:    1,
		Burst:   1,
		Skipper: func(c *Context) bool { return true },
	}))
	app.GET("/", func(c *Context) (any, error) { return "ok", nil })

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestMemoryStoreAllowAndReset(t *testing.T) {
	store := NewMemoryStore(1, 1)
	assert.True(t, store.Allow("k"))
	assert.False(t, store.Allow("k"))

	store.Reset("k")
	assert.True(t, store.Allow("k"))
}
