package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "rideinsights",
	Short: "RideInsights - ride-hailing analytics backend",
	Long: `RideInsights Unified CLI

Backend for the OLA ride-hailing analytics dashboard:
normalizes the raw booking export, keeps a canonical CSV cache,
loads an embedded SQLite store and serves a fixed catalog of
analytical queries over HTTP.

Usage:
  go run ./cmd/rideinsights [command]

Examples:
  go run ./cmd/rideinsights api
  go run ./cmd/rideinsights ingest
  go run ./cmd/rideinsights query successful_bookings
  go run ./cmd/rideinsights status`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "development", "environment (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
