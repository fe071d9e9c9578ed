// Package main provides the entry point for the ContactLens CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "contactlens",
	Short: "ContactLens business-card extraction service",
	Long:  "ContactLens extracts structured contact data from business-card images with Gemini vision, checks new entries for semantic duplicates, and serves the session contact list over a REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
