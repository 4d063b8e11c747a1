package proxy

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/lab-edge/internal/config"
	"github.com/ethpandaops/lab-edge/internal/function"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return logger
}

// site stands in for the static site behind the proxy.
var site = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	_ = json.NewEncoder(w).Encode(map[string]string{"served_by": "site"})
})

func boolPtr(b bool) *bool {
	return &b
}

// newUpstream echoes the forwarded path and query as JSON.
func newUpstream(t *testing.T) *httptest.Server {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)

			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Access-Control-Allow-Origin", "https://upstream.example")

		_ = json.NewEncoder(w).Encode(map[string]string{
			"path":            r.URL.Path,
			"query":           r.URL.RawQuery,
			"x_forwarded_for": r.Header.Get("X-Forwarded-For"),
		})
	}))
	t.Cleanup(srv.Close)

	return srv
}

func TestProxy_AddRoute(t *testing.T) {
	tests := []struct {
		name        string
		route       config.RouteConfig
		expectError bool
		errorMsg    string
	}{
		{
			name:  "valid route added successfully",
			route: config.RouteConfig{Name: "api", PathPrefix: "/api/", TargetURL: "http://127.0.0.1:1"},
		},
		{
			name:  "disabled route is registered without a proxy",
			route: config.RouteConfig{Name: "off", PathPrefix: "/off/", TargetURL: "http://127.0.0.1:1", Enabled: boolPtr(false)},
		},
		{
			name:        "invalid target URL rejected",
			route:       config.RouteConfig{Name: "invalid", PathPrefix: "/x/", TargetURL: "://invalid-url"},
			expectError: true,
			errorMsg:    "invalid target_url",
		},
		{
			name:        "missing name rejected",
			route:       config.RouteConfig{PathPrefix: "/x/", TargetURL: "http://127.0.0.1:1"},
			expectError: true,
			errorMsg:    "route name cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := New(testLogger(), nil, site)
			require.NoError(t, err)

			err = p.AddRoute(tt.route)
			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
				assert.Zero(t, p.RouteCount())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, 1, p.RouteCount())
			assert.NotNil(t, p.routes.Match(tt.route.PathPrefix))
			assert.Equal(t, tt.route.IsEnabled(), p.proxies[tt.route.Name] != nil)
		})
	}
}

func TestProxy_ServeHTTP(t *testing.T) {
	upstream := newUpstream(t)

	p, err := New(testLogger(), []config.RouteConfig{
		{Name: "api", PathPrefix: "/api/", TargetURL: upstream.URL},
		{Name: "v2", PathPrefix: "/api/v2/", TargetURL: upstream.URL + "/v2", StripPrefix: true},
		{Name: "off", PathPrefix: "/api/off/", TargetURL: upstream.URL, Enabled: boolPtr(false)},
	}, site)
	require.NoError(t, err)

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantBody   map[string]string
	}{
		{
			name:       "prefix kept",
			path:       "/api/items?limit=10",
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"path": "/api/items", "query": "limit=10"},
		},
		{
			name:       "longest prefix wins and is stripped",
			path:       "/api/v2/items",
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"path": "/v2/items"},
		},
		{
			name:       "disabled route",
			path:       "/api/off/items",
			wantStatus: http.StatusServiceUnavailable,
			wantBody:   map[string]string{"error": "route disabled", "route": "off"},
		},
		{
			name:       "unmatched path falls through to the site",
			path:       "/about",
			wantStatus: http.StatusOK,
			wantBody:   map[string]string{"served_by": "site"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, http.NoBody)
			rec := httptest.NewRecorder()

			p.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

			for key, want := range tt.wantBody {
				assert.Equal(t, want, body[key], "field %s", key)
			}
		})
	}
}

func TestProxy_UpstreamFailure(t *testing.T) {
	upstream := httptest.NewServer(http.NotFoundHandler())
	deadURL := upstream.URL
	upstream.Close()

	p, err := New(testLogger(), []config.RouteConfig{
		{Name: "api", PathPrefix: "/api/", TargetURL: deadURL},
	}, site)
	require.NoError(t, err)

	t.Run("reported as downstream failure inside the function host", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/items", http.NoBody)

		resp, err := function.Capture(p, req)
		assert.Nil(t, resp)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "route api")
	})

	t.Run("rendered as 502 when served directly", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/items", http.NoBody)
		rec := httptest.NewRecorder()

		p.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Contains(t, rec.Body.String(), "upstream unavailable")
	})
}

func TestProxy_UpdateRoute(t *testing.T) {
	first := newUpstream(t)
	second := newUpstream(t)

	p, err := New(testLogger(), []config.RouteConfig{
		{Name: "api", PathPrefix: "/api/", TargetURL: first.URL},
	}, site)
	require.NoError(t, err)

	original := p.proxies["api"]

	// Unchanged config keeps the existing proxy
	require.NoError(t, p.UpdateRoute(config.RouteConfig{Name: "api", PathPrefix: "/api/", TargetURL: first.URL}))
	assert.Same(t, original, p.proxies["api"])

	// New target replaces it
	require.NoError(t, p.UpdateRoute(config.RouteConfig{Name: "api", PathPrefix: "/api/", TargetURL: second.URL}))
	assert.NotSame(t, original, p.proxies["api"])
	assert.Equal(t, 1, p.RouteCount())
	assert.Equal(t, second.URL, p.routes[0].targetURL)

	// Unknown routes are added
	require.NoError(t, p.UpdateRoute(config.RouteConfig{Name: "other", PathPrefix: "/other/", TargetURL: second.URL}))
	assert.Equal(t, 2, p.RouteCount())
}

func TestProxy_RemoveRoute(t *testing.T) {
	p, err := New(testLogger(), []config.RouteConfig{
		{Name: "api", PathPrefix: "/api/", TargetURL: "http://127.0.0.1:1"},
		{Name: "other", PathPrefix: "/other/", TargetURL: "http://127.0.0.1:1"},
	}, site)
	require.NoError(t, err)

	p.RemoveRoute("api")
	p.RemoveRoute("missing")

	assert.Equal(t, 1, p.RouteCount())
	assert.Nil(t, p.routes.Match("/api/items"))
	assert.NotNil(t, p.routes.Match("/other/items"))
	assert.NotContains(t, p.proxies, "api")
	assert.Equal(t, []string{"other"}, p.RouteNames())
}
