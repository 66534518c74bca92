/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the volunteer hours server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Initialize SQLite store
  3. Create API handler with dependencies
  4. Start the background refresh cycle
  5. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080)
  -db      SQLite database path (default: hours.db)
           Use ":memory:" for in-memory database

ENVIRONMENT:
  HOURLY_RATE          In-kind value per approved hour (default: 33.49)
  REFRESH_INTERVAL     Background cycle cadence (default: 5s)
  SWEEP_CUTOFF_HOURS   Auto-close cutoff in hours (default: 12)
  Variables may come from a .env file in the working directory.

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the refresh cycle
  4. Close database connection
  5. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/hours.db"

  # Run with in-memory database
  ./server -db=":memory:"

  # Run on different port
  ./server -port=3000

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"github.com/clubops/volunteer-hours/api"
	"github.com/clubops/volunteer-hours/hours"
	"github.com/clubops/volunteer-hours/store/sqlite"
)

func main() {
	// .env is optional; real env vars win either way
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration from .env")
	}

	// Flags
	port := flag.Int("port", 8080, "HTTP server port")
	dbPath := flag.String("db", "hours.db", "SQLite database path")
	flag.Parse()

	hourlyRate := hours.DefaultHourlyRate
	if raw := os.Getenv("HOURLY_RATE"); raw != "" {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			log.Fatalf("Invalid HOURLY_RATE %q: %v", raw, err)
		}
		hourlyRate = rate
	}

	sweepCutoff := hours.DefaultSweepCutoff
	if raw := os.Getenv("SWEEP_CUTOFF_HOURS"); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil || h <= 0 {
			log.Fatalf("Invalid SWEEP_CUTOFF_HOURS %q", raw)
		}
		sweepCutoff = time.Duration(h) * time.Hour
	}

	refreshInterval := api.DefaultRefreshInterval
	if raw := os.Getenv("REFRESH_INTERVAL"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			log.Fatalf("Invalid REFRESH_INTERVAL %q", raw)
		}
		refreshInterval = d
	}

	// Initialize store
	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	// Initialize handler and background refresh
	handler := api.NewHandler(store, hourlyRate, sweepCutoff)

	refresh := api.NewRefreshScheduler(handler.Sweeper)
	refresh.Interval = refreshInterval
	handler.Refresh = refresh
	refresh.Start()
	defer refresh.Stop()

	// Create router
	router := api.NewRouter(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
