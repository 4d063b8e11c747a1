package function

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapture(t *testing.T) {
	tests := []struct {
		name       string
		handler    http.HandlerFunc
		wantStatus int
		wantBody   string
		wantHeader map[string]string
		noHeader   []string
	}{
		{
			name: "explicit status and body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				_, _ = w.Write([]byte(`{"id":1}`))
			},
			wantStatus: http.StatusCreated,
			wantBody:   `{"id":1}`,
			wantHeader: map[string]string{"Content-Type": "application/json"},
		},
		{
			name: "implicit 200 on write",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("first "))
				_, _ = w.Write([]byte("second"))
			},
			wantStatus: http.StatusOK,
			wantBody:   "first second",
		},
		{
			name:       "handler that writes nothing",
			handler:    func(w http.ResponseWriter, r *http.Request) {},
			wantStatus: http.StatusOK,
		},
		{
			name: "second WriteHeader is ignored",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				w.WriteHeader(http.StatusOK)
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "early hints do not replace the final status",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Link", "</app.css>; rel=preload")
				w.WriteHeader(http.StatusEarlyHints)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				_, _ = w.Write([]byte(`{"items":[]}`))
			},
			wantStatus: http.StatusOK,
			wantBody:   `{"items":[]}`,
			wantHeader: map[string]string{"Content-Type": "application/json"},
		},
		{
			name: "headers set after WriteHeader are dropped",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "text/plain")
				w.WriteHeader(http.StatusAccepted)
				w.Header().Set("X-Late", "1")
				_, _ = w.Write([]byte("ok"))
			},
			wantStatus: http.StatusAccepted,
			wantBody:   "ok",
			wantHeader: map[string]string{"Content-Type": "text/plain"},
			noHeader:   []string{"X-Late"},
		},
		{
			name: "headers set after an implicit 200 are dropped",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("ok"))
				w.Header().Set("X-Late", "1")
			},
			wantStatus: http.StatusOK,
			wantBody:   "ok",
			noHeader:   []string{"X-Late"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/items", http.NoBody)

			resp, err := Capture(tt.handler, req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantBody, string(resp.Body))

			for key, want := range tt.wantHeader {
				assert.Equal(t, want, resp.Header.Get(key))
			}

			for _, key := range tt.noHeader {
				assert.Empty(t, resp.Header.Get(key))
			}
		})
	}
}

func TestCapture_Fail(t *testing.T) {
	errUpstream := errors.New("dial tcp: connection refused")

	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Fail(r, errUpstream)
		// A second report does not replace the first
		Fail(r, errors.New("later"))

		w.WriteHeader(http.StatusBadGateway)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/items", http.NoBody)

	resp, err := Capture(handler, req)
	assert.Nil(t, resp)
	assert.Same(t, errUpstream, err)
}

func TestFail_OutsideCapture(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)

	assert.NotPanics(t, func() {
		Fail(req, errors.New("ignored"))
	})
}
