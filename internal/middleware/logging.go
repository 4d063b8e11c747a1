package middleware

import (
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

// Logging returns middleware that logs all HTTP requests.
func Logging(logger logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			fields := logrus.Fields{
				"method":        r.Method,
				"path":          r.URL.Path,
				"status":        rec.statusCode,
				"duration_ms":   time.Since(start).Milliseconds(),
				"bytes_written": rec.bytesWritten,
				"remote_addr":   r.RemoteAddr,
				"user_agent":    r.UserAgent(),
			}

			if origin := r.Header.Get("Origin"); origin != "" {
				fields["origin"] = origin
			}

			logger.WithFields(fields).Info("HTTP request completed")
		})
	}
}
