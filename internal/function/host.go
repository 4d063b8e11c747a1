package function

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"
)

// Handler returns an http.Handler that invokes fn for every request, with
// next as the continuation. A downstream failure returned by fn is logged
// and answered with 502.
func Handler(logger logrus.FieldLogger, env Env, fn Func, next http.Handler) http.Handler {
	log := logger.WithField("component", "function")

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c := NewContext(r, env, ContinuationFunc(func() (*Response, error) {
			return Capture(next, r)
		}))

		resp, err := fn(c)
		if err == nil && resp == nil {
			err = ErrNoResponse
		}

		if err != nil {
			log.WithFields(logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
				"error":  err.Error(),
			}).Error("Downstream failure")

			writeFailure(w)

			return
		}

		if err := resp.WriteTo(w); err != nil {
			log.WithError(err).WithField("path", r.URL.Path).Warn("Failed to write response")
		}
	})
}

func writeFailure(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)

	_ = json.NewEncoder(w).Encode(map[string]string{
		"error": "downstream failure",
	})
}
