// Package main provides the hashresume command: the resume builder API server
// and command-line access to its drafting, scoring and export features.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "hashresume",
	Short: "Resume builder API server and tools",
	Long: "hashresume edits a single resume document, drafts and scores content with Gemini, " +
		"and exports it once a payment reference has been confirmed.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to JSON or YAML config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
