/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the food donation marketplace server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (if present) and parse command-line flags
  2. Construct the logger
  3. Pick the record store (in-memory by default, SQLite with -db)
  4. Wire ledger, aggregator, impact generator, and auth service
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 5000)
  -db      SQLite database path. Empty (the default) keeps the in-memory
           store: records live for the process lifetime only.

ENVIRONMENT:
  JWT_SECRET   Token signing secret (required in production)
  PORT         Overrides -port when set
  APP_ENV      "production" tightens logging and config requirements

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - donation/ledger.go: Core domain wiring
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
	"github.com/rs/zerolog"

	"github.com/waste2give/marketplace/api"
	"github.com/waste2give/marketplace/auth"
	"github.com/waste2give/marketplace/donation"
	memstore "github.com/waste2give/marketplace/donation/store"
	"github.com/waste2give/marketplace/store/sqlite"
)

func main() {
	// .env is optional; flags and the environment win over it.
	_ = godotenv.Load()

	port := flag.Int("port", 5000, "HTTP server port")
	dbPath := flag.String("db", "", "SQLite database path (empty = in-memory)")
	flag.Parse()

	if p := os.Getenv("PORT"); p != "" {
		fmt.Sscanf(p, "%d", port)
	}

	logger := newLogger(os.Getenv("APP_ENV"))

	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("APP_ENV") == "production" {
			logger.Fatal().Msg("JWT_SECRET is required in production")
		}
		secret = "dev-secret-change-me"
		logger.Warn().Msg("JWT_SECRET not set, using development secret")
	}

	// Record store: in-memory by default, SQLite when asked for durability.
	var (
		recordStore donation.Store
		closeStore  = func() error { return nil }
	)
	if *dbPath != "" {
		s, err := sqlite.New(*dbPath)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to open database")
		}
		recordStore = s
		closeStore = s.Close
		logger.Info().Str("path", *dbPath).Msg("using sqlite store")
	} else {
		recordStore = memstore.NewMemory()
		logger.Info().Msg("using in-memory store")
	}
	defer closeStore()

	// Core wiring: one ledger, one aggregator, one impact generator, all
	// constructed here and passed down. No ambient globals.
	impact := donation.NewImpactGenerator()
	ledger := donation.NewLedger(recordStore, impact)
	history := donation.NewAggregator(recordStore)

	authSvc := auth.NewService(secret)
	if err := authSvc.SeedDemoUsers(); err != nil {
		logger.Fatal().Err(err).Msg("failed to seed demo users")
	}

	handler := api.NewHandler(ledger, history, authSvc, logger)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Int("port", *port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("server forced to shutdown")
	}

	logger.Info().Msg("server stopped")
}

// newLogger constructs a zerolog.Logger with sane defaults for the service.
func newLogger(appEnv string) zerolog.Logger {
	level := zerolog.InfoLevel
	if appEnv != "production" {
		level = zerolog.DebugLevel
	}

	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	if appEnv != "production" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}
	return logger
}
