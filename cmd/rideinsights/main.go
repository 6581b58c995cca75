package main

import (
	"os"

	"github.com/rideinsights/backend/cmd/rideinsights/commands"
)

// main is the entry point for the RideInsights CLI
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
