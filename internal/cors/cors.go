package cors

import (
	"net/http"

	"github.com/ethpandaops/lab-edge/internal/function"
)

const (
	HeaderAllowOrigin  = "Access-Control-Allow-Origin"
	HeaderAllowMethods = "Access-Control-Allow-Methods"
	HeaderAllowHeaders = "Access-Control-Allow-Headers"
)

// headerSet is the fixed policy stamped on every response.
var headerSet = [...]struct {
	name  string
	value string
}{
	{HeaderAllowOrigin, "*"},
	{HeaderAllowMethods, "GET, HEAD, OPTIONS"},
	{HeaderAllowHeaders, "Content-Type"},
}

// Headers returns a copy of the CORS header set.
func Headers() http.Header {
	h := make(http.Header, len(headerSet))
	Apply(h)

	return h
}

// Apply sets the CORS header set on h, replacing any existing values for
// those names. Other headers are left alone.
func Apply(h http.Header) {
	for _, entry := range headerSet {
		h.Set(entry.name, entry.value)
	}
}

// IsPreflight reports whether r is a preflight request.
func IsPreflight(r *http.Request) bool {
	return r.Method == http.MethodOptions
}

// Preflight returns the response for a preflight request: 200, no body and
// only the CORS header set.
func Preflight() *function.Response {
	resp := function.NewResponse(http.StatusOK)
	Apply(resp.Header)

	return resp
}

// Gate answers preflight requests directly and adds the CORS header set to
// every other response produced by the rest of the chain.
// Downstream errors are returned as is.
func Gate(c *function.Context) (*function.Response, error) {
	if IsPreflight(c.Request) {
		return Preflight(), nil
	}

	resp, err := c.Next()
	if err != nil {
		return nil, err
	}

	if resp.Header == nil {
		resp.Header = make(http.Header, len(headerSet))
	}

	Apply(resp.Header)

	return resp, nil
}
