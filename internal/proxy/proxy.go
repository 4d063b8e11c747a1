package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/lab-edge/internal/config"
	"github.com/ethpandaops/lab-edge/internal/function"
)

// Proxy forwards configured path prefixes to upstream APIs. Paths no route
// covers are passed to the fallback handler.
type Proxy struct {
	routes   routeTable
	proxies  map[string]*httputil.ReverseProxy
	fallback http.Handler
	logger   logrus.FieldLogger
	mu       sync.RWMutex

	transport    http.RoundTripper
	healthClient *http.Client
}

// New creates a proxy with a ReverseProxy per enabled route.
func New(logger logrus.FieldLogger, routes []config.RouteConfig, fallback http.Handler) (*Proxy, error) {
	p := &Proxy{
		proxies:  make(map[string]*httputil.ReverseProxy),
		fallback: fallback,
		logger:   logger.WithField("component", "proxy"),
		transport: &http.Transport{
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   10,
			IdleConnTimeout:       90 * time.Second,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 30 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
		},
		healthClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}

	for _, rc := range routes {
		if err := p.AddRoute(rc); err != nil {
			return nil, err
		}
	}

	return p, nil
}

// ServeHTTP implements http.Handler interface.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.mu.RLock()
	rt := p.routes.Match(r.URL.Path)

	var proxy *httputil.ReverseProxy
	if rt != nil {
		proxy = p.proxies[rt.name]
	}
	p.mu.RUnlock()

	if rt == nil {
		p.fallback.ServeHTTP(w, r)

		return
	}

	if !rt.enabled || proxy == nil {
		p.logger.WithField("route", rt.name).Debug("Route is disabled")

		p.writeJSONError(w, http.StatusServiceUnavailable, "route disabled", rt.name)

		return
	}

	p.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"route":  rt.name,
		"path":   r.URL.Path,
	}).Debug("Proxying request")

	proxy.ServeHTTP(w, r)
}

// RouteNames returns the names of all configured routes.
func (p *Proxy) RouteNames() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	names := make([]string, 0, len(p.routes))
	for _, rt := range p.routes {
		names = append(names, rt.name)
	}

	return names
}

// RouteCount returns the number of configured routes.
func (p *Proxy) RouteCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.routes)
}

// AddRoute adds a route at runtime. An existing route with the same name is replaced.
func (p *Proxy) AddRoute(rc config.RouteConfig) error {
	if err := rc.Validate(); err != nil {
		return err
	}

	rt := &route{
		name:        rc.Name,
		prefix:      rc.PathPrefix,
		targetURL:   rc.TargetURL,
		stripPrefix: rc.StripPrefix,
		enabled:     rc.IsEnabled(),
	}

	var proxy *httputil.ReverseProxy

	if rt.enabled {
		var err error

		proxy, err = p.createReverseProxy(rt)
		if err != nil {
			return fmt.Errorf("failed to create proxy for %s: %w", rc.Name, err)
		}

		if healthy, err := p.checkHealth(rc.TargetURL); !healthy {
			fields := logrus.Fields{
				"route":      rc.Name,
				"target_url": rc.TargetURL,
			}
			if err != nil {
				fields["error"] = err.Error()
			}

			p.logger.WithFields(fields).Warn("Upstream unhealthy for route")
		}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeLocked(rc.Name)

	p.routes = append(p.routes, rt).sorted()
	if proxy != nil {
		p.proxies[rc.Name] = proxy
	}

	p.logger.WithFields(logrus.Fields{
		"route":       rc.Name,
		"path_prefix": rc.PathPrefix,
		"target_url":  rc.TargetURL,
		"enabled":     rt.enabled,
	}).Info("Route added")

	return nil
}

// UpdateRoute replaces a route only when its target or options changed.
func (p *Proxy) UpdateRoute(rc config.RouteConfig) error {
	p.mu.RLock()

	var current *route

	for _, rt := range p.routes {
		if rt.name == rc.Name {
			current = rt

			break
		}
	}
	p.mu.RUnlock()

	if current != nil &&
		current.targetURL == rc.TargetURL &&
		current.prefix == rc.PathPrefix &&
		current.stripPrefix == rc.StripPrefix &&
		current.enabled == rc.IsEnabled() {
		p.logger.WithField("route", rc.Name).Debug("Route unchanged, skipping update")

		return nil
	}

	return p.AddRoute(rc)
}

// RemoveRoute removes a route at runtime.
func (p *Proxy) RemoveRoute(name string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.removeLocked(name) {
		p.logger.WithField("route", name).Info("Route removed")
	}
}

func (p *Proxy) removeLocked(name string) bool {
	for i, rt := range p.routes {
		if rt.name != name {
			continue
		}

		p.routes = append(p.routes[:i:i], p.routes[i+1:]...)
		delete(p.proxies, name)

		return true
	}

	return false
}

// createReverseProxy creates and configures a ReverseProxy for a route.
// Transport failures are reported to the function host as downstream failures
// rather than rendered here.
func (p *Proxy) createReverseProxy(rt *route) (*httputil.ReverseProxy, error) {
	target, err := url.Parse(rt.targetURL)
	if err != nil {
		return nil, fmt.Errorf("invalid target URL: %w", err)
	}

	return &httputil.ReverseProxy{
		Rewrite: func(r *httputil.ProxyRequest) {
			r.SetURL(target)
			r.SetXForwarded()

			r.Out.URL.Path = singleJoiningSlash(target.Path, RewritePath(rt.prefix, r.In.URL.Path, rt.stripPrefix))
			r.Out.URL.RawPath = ""
			r.Out.URL.RawQuery = r.In.URL.RawQuery
		},
		Transport: p.transport,
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			p.logger.WithFields(logrus.Fields{
				"route":       rt.name,
				"target_url":  target.String(),
				"error":       err.Error(),
				"method":      r.Method,
				"path":        r.URL.Path,
				"remote_addr": r.RemoteAddr,
			}).Error("Upstream error")

			function.Fail(r, fmt.Errorf("route %s: %w", rt.name, err))

			// Only reached when serving outside the function host
			p.writeJSONError(w, http.StatusBadGateway, "upstream unavailable", rt.name)
		},
	}, nil
}

// checkHealth checks if an upstream is healthy by hitting its /health endpoint.
func (p *Proxy) checkHealth(targetURL string) (bool, error) {
	baseURL, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("invalid target URL: %w", err)
	}

	healthURL := &url.URL{
		Scheme: baseURL.Scheme,
		Host:   baseURL.Host,
		Path:   "/health",
	}

	resp, err := p.healthClient.Get(healthURL.String())
	if err != nil {
		return false, fmt.Errorf("health check request failed: %w", err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

// writeJSONError writes a JSON error response.
func (p *Proxy) writeJSONError(w http.ResponseWriter, statusCode int, message string, routeName string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := map[string]string{
		"error": message,
	}

	if routeName != "" {
		response["route"] = routeName
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		p.logger.WithFields(logrus.Fields{
			"error":       err.Error(),
			"status_code": statusCode,
		}).Error("Failed to encode error response")
	}
}

func singleJoiningSlash(a, b string) string {
	aslash := len(a) > 0 && a[len(a)-1] == '/'
	bslash := len(b) > 0 && b[0] == '/'

	switch {
	case aslash && bslash:
		return a + b[1:]
	case !aslash && !bslash:
		return a + "/" + b
	}

	return a + b
}
