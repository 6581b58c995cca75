package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rideinsights/backend/internal/engine"
	"github.com/rideinsights/backend/internal/normalize"
	"github.com/rideinsights/backend/internal/pipeline"
	"github.com/rideinsights/backend/internal/source"
	"github.com/rideinsights/backend/pkg/config"
	"github.com/rideinsights/backend/pkg/database"
	"github.com/rideinsights/backend/pkg/logger"
)

// ingestCmd represents the ingest command
var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Rebuild the canonical dataset from the raw source",
	Long: `Reads the raw booking workbook, normalizes it, rewrites the
canonical CSV cache and reloads the SQLite store.

Unlike the API bootstrap, this always goes back to the raw source
and treats a store write failure as an error.

Example:
  go run ./cmd/rideinsights ingest
  go run ./cmd/rideinsights ingest --if-stale`,
	RunE: runIngest,
}

var (
	ingestIfStale bool
)

func init() {
	rootCmd.AddCommand(ingestCmd)

	// Flags
	ingestCmd.Flags().BoolVar(&ingestIfStale, "if-stale", false, "rebuild only when the source is newer than the cache")
}

func runIngest(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RideInsights Ingest ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Open the store
	db, err := database.Open(cfg.Data.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	// 4. Create the data pipeline
	norm := normalize.New(log)
	loader := source.NewLoader(cfg.Data, norm, log)
	eng := engine.New(db, log)
	pipe := pipeline.New(loader, eng, log)

	// 5. Run the rebuild
	ctx := context.Background()
	if ingestIfStale {
		refreshed, err := pipe.RefreshIfStale(ctx)
		if err != nil {
			return fmt.Errorf("refresh: %w", err)
		}
		if !refreshed {
			fmt.Println("Cache is up to date, nothing to do")
			return nil
		}
	} else {
		if err := pipe.Refresh(ctx); err != nil {
			if pipeline.IsSourceUnavailable(err) {
				return fmt.Errorf("raw source not found at %s", cfg.Data.SourcePath)
			}
			return fmt.Errorf("refresh: %w", err)
		}
	}

	// 6. Report
	summary, err := eng.Summarize(ctx)
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	fmt.Printf("\n✅ Ingest complete\n")
	fmt.Printf("%-10s %s\n", "Cache:", cfg.Data.CachePath)
	fmt.Printf("%-10s %s\n", "Store:", cfg.Data.StorePath)
	fmt.Printf("%-10s %d\n", "Rows:", summary.Rows)
	fmt.Printf("%-10s %d\n", "Columns:", len(summary.Columns))

	return nil
}
