package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/lab-edge/internal/headers"
)

// Headers returns an HTTP middleware that applies headers based on configured policies.
// Headers from the first matching policy are set before the wrapped handler runs,
// so the handler may still override them.
func Headers(manager *headers.Manager, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if policy := manager.Apply(r.URL.Path, w.Header()); policy != "" {
				log.WithFields(logrus.Fields{
					"path":   r.URL.Path,
					"policy": policy,
				}).Debug("applied header policy")
			}

			next.ServeHTTP(w, r)
		})
	}
}
