//nolint:tagliatelle // superior snake-case yo.
package config

import (
	"fmt"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration.
type Config struct {
	Server  ServerConfig      `yaml:"server"`
	Env     map[string]string `yaml:"env"`
	Routes  []RouteConfig     `yaml:"routes"`
	Headers HeadersConfig     `yaml:"headers"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`
	Host            string        `yaml:"host"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	LogLevel        string        `yaml:"log_level"`
}

// RouteConfig defines an upstream that a path prefix is proxied to.
type RouteConfig struct {
	Name        string `yaml:"name"`
	PathPrefix  string `yaml:"path_prefix"`  // e.g. "/api/"
	TargetURL   string `yaml:"target_url"`   // Upstream base URL
	StripPrefix bool   `yaml:"strip_prefix"` // Drop path_prefix before forwarding
	Enabled     *bool  `yaml:"enabled"`      // nil = enabled
}

// HeadersConfig holds response header policies.
type HeadersConfig struct {
	Policies []HeaderPolicy `yaml:"policies"`
}

// HeaderPolicy sets headers on responses whose path matches PathPattern.
type HeaderPolicy struct {
	Name        string            `yaml:"name"`
	PathPattern string            `yaml:"path_pattern"` // Regex pattern
	Headers     map[string]string `yaml:"headers"`
}

// IsEnabled reports whether the route should be served.
func (r *RouteConfig) IsEnabled() bool {
	return r.Enabled == nil || *r.Enabled
}

// Validate validates a route configuration.
func (r *RouteConfig) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("route name cannot be empty")
	}

	if !strings.HasPrefix(r.PathPrefix, "/") {
		return fmt.Errorf("route %s: path_prefix must start with /", r.Name)
	}

	if r.TargetURL == "" {
		return fmt.Errorf("route %s: target_url cannot be empty", r.Name)
	}

	parsedURL, err := url.Parse(r.TargetURL)
	if err != nil {
		return fmt.Errorf("route %s: invalid target_url: %w", r.Name, err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("route %s: target_url must use http or https", r.Name)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("route %s: target_url must include a host", r.Name)
	}

	return nil
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	// Validate server config
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive")
	}

	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"trace": true, "debug": true, "info": true,
		"warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[c.Server.LogLevel] {
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	routeNames := make(map[string]bool)
	prefixes := make(map[string]string)

	for i := range c.Routes {
		route := &c.Routes[i]

		if err := route.Validate(); err != nil {
			return fmt.Errorf("route %d: %w", i, err)
		}

		if routeNames[route.Name] {
			return fmt.Errorf("duplicate route name: %s", route.Name)
		}

		routeNames[route.Name] = true

		if other, ok := prefixes[route.PathPrefix]; ok {
			return fmt.Errorf("routes %s and %s share path_prefix %s", other, route.Name, route.PathPrefix)
		}

		prefixes[route.PathPrefix] = route.Name
	}

	for i, policy := range c.Headers.Policies {
		if policy.Name == "" {
			return fmt.Errorf("headers.policies[%d].name is required", i)
		}

		if _, err := regexp.Compile(policy.PathPattern); err != nil {
			return fmt.Errorf("headers.policies[%d].path_pattern invalid regex: %w", i, err)
		}
	}

	return nil
}

// GetRouteByName returns the route configuration with the given name.
func (c *Config) GetRouteByName(name string) (*RouteConfig, error) {
	for i := range c.Routes {
		if c.Routes[i].Name == name {
			return &c.Routes[i], nil
		}
	}

	return nil, fmt.Errorf("route not found: %s", name)
}
