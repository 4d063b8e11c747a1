package proxy

import (
	"sort"
	"strings"
)

// route is a proxied path prefix.
type route struct {
	name        string
	prefix      string
	targetURL   string
	stripPrefix bool
	enabled     bool
}

// routeTable keeps routes ordered by descending prefix length so the first
// match is the most specific one.
type routeTable []*route

func (t routeTable) sorted() routeTable {
	out := make(routeTable, len(t))
	copy(out, t)

	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].prefix) > len(out[j].prefix)
	})

	return out
}

// Match returns the most specific route for path, or nil.
func (t routeTable) Match(path string) *route {
	for _, r := range t {
		if MatchPrefix(r.prefix, path) {
			return r
		}
	}

	return nil
}

// MatchPrefix reports whether path falls under prefix.
// "/api/" and "/api" both match "/api", "/api/" and "/api/items" but not "/apis".
func MatchPrefix(prefix, path string) bool {
	trimmed := strings.TrimSuffix(prefix, "/")
	if trimmed == "" {
		return true
	}

	if path == trimmed {
		return true
	}

	return strings.HasPrefix(path, trimmed+"/")
}

// RewritePath returns the path forwarded upstream.
// With strip set, the prefix is removed and the result always starts with "/".
// Input: /api/items, prefix /api/, strip=true.
// Output: /items.
func RewritePath(prefix, path string, strip bool) string {
	if !strip {
		return path
	}

	rest := strings.TrimPrefix(path, strings.TrimSuffix(prefix, "/"))
	if !strings.HasPrefix(rest, "/") {
		rest = "/" + rest
	}

	return rest
}
