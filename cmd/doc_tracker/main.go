// Package main provides the entry point for the Document Change Tracker.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "doc_tracker",
	Short: "Document Change Tracker",
	Long:  "Document Change Tracker compares two versions of a document, classifies the business impact of every change, and produces an annotated copy with the changes highlighted.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
