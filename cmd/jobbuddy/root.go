package main

import (
	"os"

	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // Cobra boilerplate
var rootCmd = &cobra.Command{
	Use:   "jobbuddy",
	Short: "Resume and job posting fit analysis service",
	Long: `jobbuddy stores resumes and asks an LLM how well each one fits a job posting.

Configuration is read from the environment (and .env when present).`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
