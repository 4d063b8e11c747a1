package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/ethpandaops/lab-edge/internal/version"
)

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Routes  int    `json:"routes"`
}

// Health returns an HTTP handler for health check endpoint.
// routes reports how many upstream routes are currently configured.
func Health(routes func() int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := HealthResponse{
			Status:  "healthy",
			Version: version.Short(),
		}

		if routes != nil {
			response.Routes = routes()
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)

		if err := json.NewEncoder(w).Encode(response); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)

			return
		}
	}
}
