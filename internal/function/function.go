package function

//go:generate mockgen -package mocks -destination mocks/mock_continuation.go github.com/ethpandaops/lab-edge/internal/function Continuation

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNoResponse is returned when a continuation yields neither a response nor an error.
var ErrNoResponse = errors.New("continuation produced no response")

// Env holds deployment variables handed to every stage of the chain.
type Env map[string]string

// Response is a fully materialised HTTP response.
// Header is mutable in place until WriteTo is called.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// NewResponse creates an empty response with the given status.
func NewResponse(status int) *Response {
	return &Response{
		StatusCode: status,
		Header:     make(http.Header),
	}
}

// WriteTo flushes the response to w.
func (r *Response) WriteTo(w http.ResponseWriter) error {
	dst := w.Header()
	for key, values := range r.Header {
		dst[key] = append([]string(nil), values...)
	}

	w.WriteHeader(r.StatusCode)

	if len(r.Body) == 0 {
		return nil
	}

	if _, err := w.Write(r.Body); err != nil {
		return fmt.Errorf("failed to write response body: %w", err)
	}

	return nil
}

// Continuation invokes the remainder of the chain.
type Continuation interface {
	Next() (*Response, error)
}

// ContinuationFunc adapts a plain function to Continuation.
type ContinuationFunc func() (*Response, error)

// Next calls f.
func (f ContinuationFunc) Next() (*Response, error) {
	return f()
}

// Context is the per-invocation view a stage gets of the request.
type Context struct {
	Request *http.Request
	Env     Env

	next Continuation
}

// NewContext creates a context whose Next delegates to next.
func NewContext(r *http.Request, env Env, next Continuation) *Context {
	return &Context{
		Request: r,
		Env:     env,
		next:    next,
	}
}

// Next runs the rest of the chain and returns its response.
// Errors are passed through untouched.
func (c *Context) Next() (*Response, error) {
	if c.next == nil {
		return nil, ErrNoResponse
	}

	resp, err := c.next.Next()
	if err != nil {
		return nil, err
	}

	if resp == nil {
		return nil, ErrNoResponse
	}

	return resp, nil
}

// Func is a request interceptor.
type Func func(c *Context) (*Response, error)
