package headers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/ethpandaops/lab-edge/internal/config"
)

// reservedPrefix marks headers owned by the CORS gate.
const reservedPrefix = "Access-Control-"

// Manager matches request paths to configured header policies.
type Manager struct {
	policies []compiledPolicy
}

type compiledPolicy struct {
	name    string
	pattern *regexp.Regexp
	headers http.Header
}

// NewManager compiles the given policies.
// Policies may not set Access-Control-* headers; those belong to the CORS gate.
func NewManager(policies []config.HeaderPolicy) (*Manager, error) {
	compiled := make([]compiledPolicy, 0, len(policies))

	for _, p := range policies {
		pattern, err := regexp.Compile(p.PathPattern)
		if err != nil {
			return nil, fmt.Errorf("invalid path_pattern in policy %q: %w", p.Name, err)
		}

		headers := make(http.Header, len(p.Headers))

		for key, value := range p.Headers {
			canonical := http.CanonicalHeaderKey(key)
			if strings.HasPrefix(canonical, reservedPrefix) {
				return nil, fmt.Errorf("policy %q sets reserved header %s", p.Name, canonical)
			}

			headers.Set(canonical, value)
		}

		compiled = append(compiled, compiledPolicy{
			name:    p.Name,
			pattern: pattern,
			headers: headers,
		})
	}

	return &Manager{policies: compiled}, nil
}

// Match returns the name and headers of the first policy matching path.
// Returns an empty name and nil headers when nothing matches.
func (m *Manager) Match(path string) (string, http.Header) {
	for _, p := range m.policies {
		if p.pattern.MatchString(path) {
			return p.name, p.headers
		}
	}

	return "", nil
}

// Apply sets the headers of the first matching policy on dst.
// Returns the matched policy name.
func (m *Manager) Apply(path string, dst http.Header) string {
	name, headers := m.Match(path)

	for key, values := range headers {
		dst[key] = append([]string(nil), values...)
	}

	return name
}

// Len returns the number of configured policies.
func (m *Manager) Len() int {
	return len(m.policies)
}
