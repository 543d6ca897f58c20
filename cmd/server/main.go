/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the clinic record-deletion workflow server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and environment configuration, parse flags
  2. Build the staff/alias configuration (file or shipped default)
  3. Initialize SQLite store
  4. Wire roster ingester + cached duty resolver + workflow service
  5. Start the duty watcher and HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides PORT)
  -db      SQLite database path (overrides DATABASE_PATH)
           Use ":memory:" for an in-memory database

ENVIRONMENT:
  PORT                  HTTP port (default 8080)
  DATABASE_PATH         SQLite path (default ./rme_system.db)
  CLINIC_TIMEZONE       Duty-window timezone (default Asia/Jakarta)
  LATE_AFTERNOON_STAFF  Overrides the designated late afternoon staffer
  STAFF_CONFIG_PATH     JSON staff roster; shipped default when unset
  LOG_LEVEL             debug | info | warn (default info)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the duty watcher, close the database
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - config/config.go: Environment settings
  - factory/staff.go: Staff roster configuration
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/fajarisfan/sirs-rme-pro/api"
	"github.com/fajarisfan/sirs-rme-pro/config"
	"github.com/fajarisfan/sirs-rme-pro/document"
	"github.com/fajarisfan/sirs-rme-pro/factory"
	"github.com/fajarisfan/sirs-rme-pro/roster"
	"github.com/fajarisfan/sirs-rme-pro/store/sqlite"
	"github.com/fajarisfan/sirs-rme-pro/workflow"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("no .env file found, using system environment")
	}

	cfg := config.Load()
	cfg.SetupLogging()

	// Flags override environment
	port := flag.String("port", cfg.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.DatabasePath, "SQLite database path")
	flag.Parse()

	rosterCfg, err := loadStaffConfig(cfg)
	if err != nil {
		logrus.Fatalf("Failed to load staff configuration: %v", err)
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		logrus.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Wire the roster engine: ingestion feeds the store, the cached
	// resolver reads it, ingestion invalidates the cache.
	duty := roster.NewCachedResolver(roster.NewResolver(store, rosterCfg))
	ingester := roster.NewIngester(document.NewXLSXExtractor(), store, rosterCfg)
	ingester.Invalidate = duty.Invalidate

	service := workflow.NewService(store, store, duty)

	handler := api.NewHandler(store, service, ingester, duty, rosterCfg)
	router := api.NewRouter(handler)

	watcher := api.NewDutyWatcher(duty)
	watcher.Start()
	defer watcher.Stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logrus.Infof("server starting on http://localhost:%s", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logrus.Fatalf("Server forced to shutdown: %v", err)
	}

	logrus.Info("server stopped")
}

// loadStaffConfig builds the roster configuration from STAFF_CONFIG_PATH
// or falls back to the shipped clinic roster, then applies env overrides.
func loadStaffConfig(cfg *config.Config) (roster.Config, error) {
	var (
		rosterCfg roster.Config
		err       error
	)

	if cfg.StaffConfigPath != "" {
		data, readErr := os.ReadFile(cfg.StaffConfigPath)
		if readErr != nil {
			return roster.Config{}, fmt.Errorf("read %s: %w", cfg.StaffConfigPath, readErr)
		}
		rosterCfg, err = factory.ParseStaffConfig(data)
		if err != nil {
			return roster.Config{}, err
		}
	} else {
		rosterCfg = factory.DefaultStaffConfig()
	}

	if cfg.Timezone != "" {
		loc, locErr := time.LoadLocation(cfg.Timezone)
		if locErr != nil {
			return roster.Config{}, fmt.Errorf("invalid CLINIC_TIMEZONE %q: %w", cfg.Timezone, locErr)
		}
		rosterCfg.Location = loc
	}
	if cfg.LateAfternoon != "" {
		rosterCfg.LateAfternoon = roster.PersonID(cfg.LateAfternoon)
	}

	return rosterCfg, nil
}
