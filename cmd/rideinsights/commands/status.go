package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rideinsights/backend/internal/engine"
	"github.com/rideinsights/backend/pkg/config"
	"github.com/rideinsights/backend/pkg/database"
	"github.com/rideinsights/backend/pkg/logger"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show dataset and store status",
	Long: `Shows what the pipeline currently has on disk: the raw source,
the canonical CSV cache and the SQLite store, with row counts for
the loaded table.

Example:
  go run ./cmd/rideinsights status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	fmt.Println("=== RideInsights Status ===")

	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Report files
	fmt.Println("\n📁 Files")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	printFileStatus("Source:", cfg.Data.SourcePath)
	printFileStatus("Cache:", cfg.Data.CachePath)
	printFileStatus("Store:", cfg.Data.StorePath)

	// 3. Report store contents
	db, err := database.Open(cfg.Data.StorePath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()

	eng := engine.New(db, logger.Nop())
	summary, err := eng.Summarize(context.Background())
	if err != nil {
		return fmt.Errorf("summarize: %w", err)
	}

	fmt.Println("\n📊 Store")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("%-10s %s\n", "Table:", summary.Table)
	fmt.Printf("%-10s %d\n", "Rows:", summary.Rows)
	fmt.Printf("%-10s %d\n", "Columns:", len(summary.Columns))

	return nil
}

// printFileStatus prints one file's presence, size and mtime
func printFileStatus(label, path string) {
	if path == "" {
		fmt.Printf("%-10s (not configured)\n", label)
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("%-10s %s (missing)\n", label, path)
		return
	}
	fmt.Printf("%-10s %s (%d bytes, modified %s)\n",
		label, path, info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
}
