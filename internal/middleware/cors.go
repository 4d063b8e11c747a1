package middleware

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/lab-edge/internal/cors"
	"github.com/ethpandaops/lab-edge/internal/function"
)

// CORS returns middleware that runs the CORS gate in front of the wrapped
// handler. Preflight requests never reach it; every other response gets the
// CORS header set, overriding whatever the handler set for those names.
func CORS(logger logrus.FieldLogger, env function.Env) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return function.Handler(logger, env, countingGate, next)
	}
}

func countingGate(c *function.Context) (*function.Response, error) {
	if cors.IsPreflight(c.Request) {
		corsPreflightTotal.Inc()
	}

	return cors.Gate(c)
}
