package testutil

import (
	"time"

	"github.com/ethpandaops/lab-edge/internal/config"
)

// NewTestConfig returns a minimal valid config for testing.
func NewTestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:            "localhost",
			Port:            8080,
			ReadTimeout:     5 * time.Second,
			WriteTimeout:    5 * time.Second,
			ShutdownTimeout: 5 * time.Second,
			LogLevel:        "info",
		},
	}
}
