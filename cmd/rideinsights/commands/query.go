package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rideinsights/backend/internal/catalog"
	"github.com/rideinsights/backend/internal/engine"
	"github.com/rideinsights/backend/internal/normalize"
	"github.com/rideinsights/backend/internal/pipeline"
	"github.com/rideinsights/backend/internal/source"
	"github.com/rideinsights/backend/pkg/config"
	"github.com/rideinsights/backend/pkg/database"
	"github.com/rideinsights/backend/pkg/logger"
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query [name]",
	Short: "Run catalog queries from the terminal",
	Long: `Runs one named catalog query, or every query when no name is
given, and prints the results as a table.

The dataset is loaded the same way the API server loads it: CSV
cache first, raw workbook as fallback.

Example:
  go run ./cmd/rideinsights query
  go run ./cmd/rideinsights query top_customers
  go run ./cmd/rideinsights query --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runQuery,
}

var (
	queryList    bool
	queryMaxRows int
)

func init() {
	rootCmd.AddCommand(queryCmd)

	// Flags
	queryCmd.Flags().BoolVar(&queryList, "list", false, "list catalog queries without running them")
	queryCmd.Flags().IntVar(&queryMaxRows, "max-rows", 20, "maximum rows to print per query")
}

func runQuery(cmd *cobra.Command, args []string) error {
	if queryList {
		fmt.Println("Available queries:")
		for _, s := range catalog.Queries() {
			fmt.Printf("  %-32s %s\n", s.Name, s.Title)
		}
		fmt.Println("\nChart series:")
		for _, s := range catalog.Charts() {
			fmt.Printf("  %-32s %s\n", s.Name, s.Title)
		}
		return nil
	}

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

	// 4. Create the data pipeline and bootstrap
	norm := normalize.New(log)
	loader := source.NewLoader(cfg.Data, norm, log)
	eng := engine.New(db, log)
	pipe := pipeline.New(loader, eng, log)

	ctx := context.Background()
	if err := pipe.Bootstrap(ctx); err != nil {
		return fmt.Errorf("bootstrap dataset: %w", err)
	}

	// 5. Pick the specs to run
	specs := catalog.All()
	if len(args) == 1 {
		spec, ok := catalog.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown query: %s (use --list)", args[0])
		}
		specs = []catalog.Spec{spec}
	}

	// 6. Run and print. A failed query is reported and the rest still run.
	for _, spec := range specs {
		result, err := eng.Run(ctx, spec.Name)
		if err != nil {
			fmt.Printf("\n❌ %s: %v\n", spec.Name, err)
			continue
		}
		printResult(result)
	}

	return nil
}

// printResult renders one query result as a fixed-width table
func printResult(result *engine.Result) {
	fmt.Printf("\n📊 %s — %s (%d rows)\n", result.Name, result.Title, result.RowCount)
	fmt.Println(strings.Repeat("━", 60))

	fmt.Println(strings.Join(result.Columns, " | "))

	limit := len(result.Rows)
	if queryMaxRows > 0 && limit > queryMaxRows {
		limit = queryMaxRows
	}
	for _, row := range result.Rows[:limit] {
		cells := make([]string, len(row))
		for i, v := range row {
			if v == nil {
				cells[i] = "-"
				continue
			}
			cells[i] = fmt.Sprintf("%v", v)
		}
		fmt.Println(strings.Join(cells, " | "))
	}
	if limit < len(result.Rows) {
		fmt.Printf("... %d more rows\n", len(result.Rows)-limit)
	}
}
