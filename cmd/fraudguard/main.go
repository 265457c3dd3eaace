// Package main provides the entry point for the FraudGuard HTTP API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fraudguard",
	Short: "FraudGuard HTTP API Server",
	Long:  "FraudGuard screens job postings and resumes for fraud signals, generates interview prep modules, and answers job-safety questions via REST API.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
