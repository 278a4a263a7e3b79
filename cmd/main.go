package main

//
//  @title           sthpulse API
//  @version         1.0
//  @description     STH realized price fetch & serving service.
//  @termsOfService  https://github.com/guttosm/sthpulse
//  @contact.name    API Support
//  @contact.url     https://github.com/guttosm/sthpulse
//  @contact.email   support@example.com
//  @license.name    MIT
//  @license.url     https://opensource.org/licenses/MIT
//  @host            localhost:8080
//  @BasePath        /
//  @schemes         http
//
//  @tag.name        series
//  @tag.description Endpoints for querying the STH realized price series
//
//  @tag.name        health
//  @tag.description Liveness and readiness probes

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guttosm/sthpulse/config"
	_ "github.com/guttosm/sthpulse/docs" // swagger docs
	"github.com/guttosm/sthpulse/internal/app"
	"github.com/guttosm/sthpulse/internal/fetch"
	"github.com/guttosm/sthpulse/internal/ingestion"
	"github.com/guttosm/sthpulse/internal/logger"
)

// startServer initializes and starts the HTTP server in a separate goroutine.
//
// Parameters:
//   - router (http.Handler): The HTTP router (Gin Engine) configured with all routes.
//   - port (string): The port where the server will listen for incoming requests.
//
// Returns:
//   - *http.Server: The initialized HTTP server instance.
func startServer(router http.Handler, port string) *http.Server {
	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.L().Info().Str("port", port).Msg("server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.L().Fatal().Err(err).Msg("server failed to start")
		}
	}()

	return server
}

// gracefulShutdown gracefully terminates the HTTP server and cleans up resources
// when an OS interrupt signal (SIGINT, SIGTERM) is received.
//
// Parameters:
//   - ctx (context.Context): A context with timeout for graceful shutdown.
//   - server (*http.Server): The HTTP server instance to shut down.
//   - cleanup (func()): Cleanup callback to release resources (e.g., DB connections).
func gracefulShutdown(ctx context.Context, server *http.Server, cleanup func()) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	logger.L().Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.L().Fatal().Err(err).Msg("server forced to shutdown")
	}

	cleanup()
	logger.L().Info().Msg("server exited gracefully")
}

// main is the entry point of the sthpulse application.
//
// Modes (selected via --mode flag):
//   - fetch: Runs the metric pipeline once and writes the JSON artifact.
//   - api:   Starts the REST API to expose the persisted series.
//
// Flags:
//   - --mode:    Execution mode ("fetch" or "api"). Default: "fetch".
//   - --out:     Output path for the JSON artifact. Defaults to OUTPUT_PATH.
//   - --window:  Moving-average window. Defaults to MA_WINDOW.
//   - --persist: Also write the series to Postgres. Default: false.
//   - --port:    Port for the API server. Defaults to value from config (SERVER_PORT).
func main() {
	ctx := context.Background()

	// Load configuration from environment or .env file
	config.LoadConfig()

	// Initialize JSON logger
	logger.Init()

	// Parse CLI flags (override config defaults if provided)
	mode := flag.String("mode", "fetch", "Mode: fetch or api")
	out := flag.String("out", config.AppConfig.Fetch.OutputPath, "Output path for the JSON artifact")
	maWindow := flag.Int("window", config.AppConfig.Fetch.MAWindow, "Trailing moving-average window over price")
	persist := flag.Bool("persist", false, "Also persist the series to Postgres")
	port := flag.String("port", config.AppConfig.Server.Port, "Port for API mode")
	flag.Parse()

	switch *mode {
	case "fetch":
		logger.L().Info().Msg("running metric fetch")

		cfg := config.AppConfig.Fetch
		cfg.OutputPath = *out
		if *maWindow >= 1 {
			cfg.MAWindow = *maWindow
		}
		if cfg.APIKey == "" {
			logger.L().Fatal().Msg("missing BMP_API_KEY env var")
		}

		var db *sql.DB
		if *persist {
			var err error
			db, err = app.InitPostgres(config.AppConfig)
			if err != nil {
				logger.L().Fatal().Err(err).Msg("db connect error")
			}
			defer func() { _ = db.Close() }()
		}

		fetcher := fetch.NewClient(cfg)
		rows, err := ingestion.Run(ctx, cfg, fetcher, db)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("metric fetch failed")
		}
		logger.L().Info().Int("rows", rows).Str("path", cfg.OutputPath).Msg("metric fetch completed successfully")

	case "api":
		logger.L().Info().Msg("starting API server")

		router, cleanup, err := app.InitializeApp()
		if err != nil {
			logger.L().Fatal().Err(err).Msg("app init error")
		}

		server := startServer(router, *port)
		gracefulShutdown(ctx, server, cleanup)

	default:
		logger.L().Fatal().Str("mode", *mode).Msg("unknown mode")
	}
}
