// Package main provides the entry point for the interview report service.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "reportd",
	Short: "Interview report synthesis service",
	Long:  "reportd turns raw AI interview transcripts into structured evaluation reports: STAR scoring, rubric coverage, skill radar, keyword profile, and optional LLM narrative.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
