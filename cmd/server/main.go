/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the agent sales and payout server. Handles
  configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Build the zerolog logger
  3. Initialize SQLite store
  4. Wire the billing engine, report service and API handler
  5. Start server with graceful shutdown

CONFIGURATION (environment, with defaults):
  APP_ENV      dev | prod (default: dev)
  API_PORT     HTTP server port (default: 8080)
  DB_PATH      SQLite database path (default: hstore.db)
               Use ":memory:" for in-memory database
  CORS_ORIGIN  allowed browser origin (default: http://localhost:3000)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: router configuration
  - store/sqlite/sqlite.go: database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/josemartunga-sudo/hstore/api"
	"github.com/josemartunga-sudo/hstore/billing"
	"github.com/josemartunga-sudo/hstore/config"
	"github.com/josemartunga-sudo/hstore/logger"
	"github.com/josemartunga-sudo/hstore/report"
	"github.com/josemartunga-sudo/hstore/store/sqlite"
)

func main() {
	cfg := config.Load()
	log := logger.New(cfg.Env)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer store.Close()

	engine := billing.NewEngine(store)
	reports := report.NewService(store)
	handler := api.NewHandler(store, engine, reports, log)
	router := api.NewRouter(handler, cfg.Origin)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
