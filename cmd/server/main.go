package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/lab-edge/internal/config"
	"github.com/ethpandaops/lab-edge/internal/frontend"
	"github.com/ethpandaops/lab-edge/internal/server"
	"github.com/ethpandaops/lab-edge/internal/version"
)

func main() {
	// Parse command-line flags
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	// Setup logger
	logger := setupLogger()

	// Load and validate configuration
	cfg, err := loadAndValidateConfig(logger, *configPath)
	if err != nil {
		logger.WithError(err).Fatal("Configuration error")
	}

	// Start HTTP server
	srv, err := startServer(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Server startup failed")
	}

	// Reload on SIGHUP, stop on interrupt
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	for sig := range sigChan {
		if sig == syscall.SIGHUP {
			reloadConfig(logger, *configPath, srv)

			continue
		}

		logger.WithField("signal", sig.String()).Info("Received shutdown signal")

		break
	}

	shutdownGracefully(logger, cfg, srv)
}

// setupLogger creates and configures the application logger.
func setupLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		ForceColors:   true,
		FullTimestamp: true,
	})

	logger.WithFields(logrus.Fields{
		"version":    version.Short(),
		"git_commit": version.GitCommit,
		"build_date": version.BuildDate,
	}).Info("Starting...")

	return logger
}

// loadAndValidateConfig loads the configuration file and validates it.
func loadAndValidateConfig(logger *logrus.Logger, configPath string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	// Set log level from config
	level, parseErr := logrus.ParseLevel(cfg.Server.LogLevel)
	if parseErr != nil {
		logger.WithError(parseErr).Warn("Invalid log level, using info")

		level = logrus.InfoLevel
	}

	logger.SetLevel(level)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	logger.WithFields(logrus.Fields{
		"port":      cfg.Server.Port,
		"log_level": cfg.Server.LogLevel,
		"routes":    len(cfg.Routes),
		"env_vars":  len(cfg.Env),
	}).Info("Configuration loaded")

	return cfg, nil
}

// startServer creates and starts the HTTP server.
func startServer(cfg *config.Config, logger *logrus.Logger) (*server.Server, error) {
	site, err := frontend.New(logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create frontend: %w", err)
	}

	logger.WithField("dev_mode", site.DevMode()).Info("Static site loaded")

	srv, err := server.New(logger, cfg, site)
	if err != nil {
		return nil, fmt.Errorf("failed to create server: %w", err)
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("HTTP server starting")

		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("HTTP server error")
		}
	}()

	return srv, nil
}

// reloadConfig re-reads the configuration file and applies its routes to the
// running server. An invalid file leaves the current configuration in place.
func reloadConfig(logger *logrus.Logger, configPath string, srv *server.Server) {
	logger.WithField("config", configPath).Info("Reloading configuration")

	cfg, err := loadAndValidateConfig(logger, configPath)
	if err != nil {
		logger.WithError(err).Error("Configuration reload failed, keeping current configuration")

		return
	}

	if err := srv.Reload(cfg); err != nil {
		logger.WithError(err).Error("Failed to apply reloaded configuration")
	}
}

// shutdownGracefully stops accepting requests and waits for in-flight ones.
func shutdownGracefully(logger *logrus.Logger, cfg *config.Config, srv *server.Server) {
	logger.Info("Initiating graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Error during server shutdown")
	}

	logger.Info("Server stopped gracefully")
}
