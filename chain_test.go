package chirp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tracer(name string, trace *[]string) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (any, error) {
			*trace = append(*trace, name+" in")
			v, err := next(c)
			*trace = append(*trace, name+" out")
			return v, err
		}
	}
}

func TestChainOrderIsFirstRegisteredOutermost(t *testing.T) {
	var trace []string
	chain := NewChain(tracer("m1", &trace), tracer("m2", &trace))
	h := chain.Then(func(c *Context) (any, error) {
		trace = append(trace, "handler")
		return nil, nil
	})

	// Reproducible across invocations of the same composed handler.
	for i := 0; i < 3; i++ {
		trace = trace[:0]
		_, err := h(nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"m1 in", "m2 in", "handler", "m2 out", "m1 out"}, trace)
	}
}

func TestChainShortCircuit(t *testing.T) {
	var reachedHandler bool
	block := func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (any, error) {
			return "blocked", nil
		}
	}
	h := NewChain(block).Then(func(c *Context) (any, error) {
		reachedHandler = true
		return "handler", nil
	})

	v, err := h(nil)
	require.NoError(t, err)
	assert.Equal(t, "blocked", v)
	assert.False(t, reachedHandler)
}

func TestChainRewritesResponseOnTheWayOut(t *testing.T) {
	upgrade := func(next HandlerFunc) HandlerFunc {
		return func(c *Context) (any, error) {
			v, err := next(c)
			if err != nil {
				return nil, err
			}
			return &Result{Body: v, Code: 201}, nil
		}
	}
	h := NewChain(upgrade).Then(func(c *Context) (any, error) {
		return "created", nil
	})

	v, err := h(nil)
	require.NoError(t, err)
	res, ok := v.(*Result)
	require.True(t, ok)
	assert.Equal(t, 201, res.Code)
	assert.Equal(t, "created", res.Body)
}

func TestChainNilTerminal(t *testing.T) {
	h := NewChain().Then(nil)
	v, err := h(nil)
	assert.NoError(t, err)
	assert.Nil(t, v)
}

func TestChainAppendDoesNotMutateReceiver(t *testing.T) {
	var trace []string
	base := NewChain(tracer("m1", &trace))
	extended := base.Append(tracer("m2", &trace))

	trace = trace[:0]
	_, err := base.Then(func(*Context) (any, error) { return nil, nil })(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1 in", "m1 out"}, trace)

	trace = trace[:0]
	_, err = extended.Then(func(*Context) (any, error) { return nil, nil })(nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"m1 in", "m2 in", "m2 out", "m1 out"}, trace)
}
