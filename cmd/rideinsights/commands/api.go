package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rideinsights/backend/internal/api"
	"github.com/rideinsights/backend/internal/api/handlers"
	"github.com/rideinsights/backend/internal/engine"
	"github.com/rideinsights/backend/internal/normalize"
	"github.com/rideinsights/backend/internal/pipeline"
	"github.com/rideinsights/backend/internal/scheduler"
	"github.com/rideinsights/backend/internal/scheduler/jobs"
	"github.com/rideinsights/backend/internal/source"
	"github.com/rideinsights/backend/pkg/config"
	"github.com/rideinsights/backend/pkg/database"
	"github.com/rideinsights/backend/pkg/logger"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "Start the analytics API server",
	Long: `Starts the REST API server.

On startup the server loads the canonical dataset (CSV cache first,
raw workbook as fallback) and fills the SQLite store, then serves
the query catalog and chart series.

Endpoints:
  GET  /health                   - Health check
  GET  /api/queries              - List the query catalog
  GET  /api/queries/{name}       - Run one catalog query
  GET  /api/charts/daily         - Rides per day series
  GET  /api/charts/status        - Booking status breakdown
  GET  /api/dataset/summary      - Loaded dataset summary
  POST /api/dataset/refresh      - Rebuild from the raw source

Example:
  go run ./cmd/rideinsights api
  go run ./cmd/rideinsights api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API server port (overrides PORT)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RideInsights API Server ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// Override port if flag is set
	if apiPort != "" {
		cfg.Port = apiPort
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Open the store
	db, err := database.Open(cfg.Data.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	log.WithField("store", cfg.Data.StorePath).Info("Store opened")

	// 4. Create the data pipeline
	norm := normalize.New(log)
	loader := source.NewLoader(cfg.Data, norm, log)
	eng := engine.New(db, log)
	pipe := pipeline.New(loader, eng, log)

	// 5. Bootstrap the dataset. No cache and no raw source is fatal;
	// a store write failure is absorbed inside Bootstrap.
	ctx := context.Background()
	if err := pipe.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap dataset: %w", err)
	}

	// 6. Start the refresh scheduler when configured
	var sched *scheduler.Scheduler
	if cfg.Data.RefreshSchedule != "" {
		sched = scheduler.New(log)
		if err := sched.AddJob(jobs.NewRefreshJob(pipe, cfg.Data.RefreshSchedule, log)); err != nil {
			return fmt.Errorf("schedule refresh job: %w", err)
		}
		sched.Start()
		defer sched.Stop()
	}

	// 7. Create handlers
	queryHandler := handlers.NewQueryHandler(eng, log)
	datasetHandler := handlers.NewDatasetHandler(eng, pipe, log)

	// 8. Create router
	router := api.NewRouter(cfg, queryHandler, datasetHandler, log)

	// 9. Create server
	server := api.New(cfg, log, router)

	// 10. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/queries")
	fmt.Println("  GET  /api/queries/{name}")
	fmt.Println("  GET  /api/charts/daily")
	fmt.Println("  GET  /api/charts/status")
	fmt.Println("  GET  /api/dataset/summary")
	fmt.Println("  POST /api/dataset/refresh")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}
