package function

import (
	"bytes"
	"context"
	"net/http"
)

type failureKey struct{}

// failure is the per-request slot a handler uses to report that it could not
// produce a response.
type failure struct {
	err error
}

// Fail marks the request as failed downstream. Capture returns err instead of
// whatever the handler wrote. Outside of Capture it is a no-op.
func Fail(r *http.Request, err error) {
	if f, ok := r.Context().Value(failureKey{}).(*failure); ok && f.err == nil {
		f.err = err
	}
}

// bufferedWriter records a handler's output without sending it.
// Like the net/http writer, headers are fixed once the final status is written.
type bufferedWriter struct {
	header      http.Header
	sent        http.Header
	body        bytes.Buffer
	statusCode  int
	wroteHeader bool
}

func (bw *bufferedWriter) Header() http.Header {
	return bw.header
}

func (bw *bufferedWriter) WriteHeader(code int) {
	if bw.wroteHeader {
		return
	}

	// Informational responses are not the final status
	if code >= 100 && code < 200 && code != http.StatusSwitchingProtocols {
		return
	}

	bw.statusCode = code
	bw.sent = bw.header.Clone()
	bw.wroteHeader = true
}

func (bw *bufferedWriter) Write(b []byte) (int, error) {
	if !bw.wroteHeader {
		bw.WriteHeader(http.StatusOK)
	}

	return bw.body.Write(b)
}

// Capture runs h against r and returns what it wrote as a Response.
// If h called Fail, the reported error is returned and the output is discarded.
func Capture(h http.Handler, r *http.Request) (*Response, error) {
	f := &failure{}
	req := r.WithContext(context.WithValue(r.Context(), failureKey{}, f))

	bw := &bufferedWriter{
		header:     make(http.Header),
		statusCode: http.StatusOK,
	}

	h.ServeHTTP(bw, req)

	if f.err != nil {
		return nil, f.err
	}

	header := bw.header
	if bw.wroteHeader {
		header = bw.sent
	}

	return &Response{
		StatusCode: bw.statusCode,
		Header:     header,
		Body:       bw.body.Bytes(),
	}, nil
}
