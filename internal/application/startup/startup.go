// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/CircuitDesk/circuitdesk-go/internal/application/container"
	"github.com/CircuitDesk/circuitdesk-go/internal/infrastructure/security"
	"github.com/CircuitDesk/circuitdesk-go/internal/presentation/http/server"
	"github.com/CircuitDesk/circuitdesk-go/pkg/config"
	"github.com/gin-gonic/gin"
)

// Initialize performs the complete startup sequence and blocks until the
// process receives a shutdown signal.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	log.Println("CircuitDesk starting...")

	// An ephemeral secret keeps the server usable without JWT_SECRET, at the
	// cost of invalidating sessions on restart.
	if config.JWTSecret == "" {
		secret, err := security.GenerateSecureKey(64)
		if err != nil {
			return fmt.Errorf("failed to generate ephemeral JWT secret: %w", err)
		}
		config.JWTSecret = secret
		log.Println("WARNING: JWT_SECRET not set, generated an ephemeral secret; tokens will not survive a restart")
	}

	// Step 1: Build the dependency injection container. This wires the
	// logger, performance tracker, both persistence paths, and services.
	appContainer, err := container.NewContainer()
	if err != nil {
		return fmt.Errorf("failed to build container: %w", err)
	}

	logger := appContainer.Logger
	logger.Startup().Info("Container initialization complete - switching to channeled logging")

	// Step 2: Start the event broadcaster.
	go appContainer.Broadcaster.Run()
	logger.Startup().Info("Event broadcaster started")

	// Step 3: Load the user collection synchronously. Authentication must
	// work from the first request, so this cannot be deferred.
	startLoadTime := time.Now()
	if err := appContainer.AuthService.LoadUsers(); err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	logger.Startup().Info("User collection ready", "count", appContainer.UserStore.Count(), "duration", time.Since(startLoadTime))

	// Step 4: Warm the lead and case collections after a short delay so the
	// server binds its port immediately.
	go func() {
		time.Sleep(config.WarmLoadDelay)
		warmStart := time.Now()

		if err := appContainer.LeadService.LoadLeads(); err != nil {
			logger.Startup().Error("Lead warm load failed", "error", err.Error())
		}
		if err := appContainer.CaseService.LoadCases(); err != nil {
			logger.Startup().Error("Case warm load failed", "error", err.Error())
		}

		logger.Startup().Info("Collection warm load completed",
			"leads", appContainer.LeadStore.Count(),
			"cases", appContainer.CaseStore.Count(),
			"duration", time.Since(warmStart))
	}()

	// Step 5: Start the background refresh worker.
	appContainer.RefreshWorker.Start()

	// Step 6: Start HTTP server
	logger.Startup().Info("Starting HTTP server...")
	startServerTime := time.Now()

	port := config.Port
	httpServer := server.New(port, appContainer)

	logger.Startup().Info("HTTP server initialized", "port", port, "duration", time.Since(startServerTime))

	// Step 7: Setup graceful shutdown
	gracefulShutdown := make(chan os.Signal, 1)
	signal.Notify(gracefulShutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.System().Info("Starting HTTP server", "address", ":"+port)
		if err := httpServer.Start(); err != nil {
			logger.System().Error("HTTP server failed", "error", err.Error())
		}
	}()

	totalStartupTime := time.Since(start)
	logger.Startup().Info("Application startup complete",
		"totalDuration", totalStartupTime,
		"port", port)

	// Wait for shutdown signal
	<-gracefulShutdown
	logger.Shutdown().Info("Shutdown signal received, starting graceful shutdown...")

	shutdownStart := time.Now()

	// Stop background workers before the server so no mutation lands while
	// connections drain.
	appContainer.RefreshWorker.Stop()
	appContainer.Broadcaster.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Shutdown().Info("Stopping HTTP server...")
	if err := httpServer.Stop(shutdownCtx); err != nil {
		logger.Shutdown().Error("Error during server shutdown", "error", err.Error())
	} else {
		logger.Shutdown().Info("HTTP server stopped successfully")
	}

	logger.Shutdown().Info("Closing persistence resources...")
	if err := appContainer.Close(); err != nil {
		logger.Shutdown().Error("Error closing container", "error", err.Error())
	}

	elapsed := time.Since(start)
	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", elapsed,
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}
