// Package cmd contains all CLI commands for the sheetlens binary.
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetlens/cmd/ai"
	"github.com/klytics/sheetlens/cmd/completion"
	cmdconfig "github.com/klytics/sheetlens/cmd/config"
	"github.com/klytics/sheetlens/cmd/doctor"
	"github.com/klytics/sheetlens/cmd/preview"
	"github.com/klytics/sheetlens/cmd/serve"
	"github.com/klytics/sheetlens/cmd/version"
)

var (
	configPath string
	jsonOutput bool
	verbose    bool
	modelName  string
	provider   string
	noColor    bool
)

// NewRootCommand creates and returns the root cobra command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "sheetlens",
		Short: "Ask a language model about your spreadsheets",
		Long: `SheetLens reads .xlsx and .xls workbooks, flattens every sheet into a
compact text preview and hands it to a language model for analysis or
question answering. Run it as an HTTP service with 'sheetlens serve' or
use the ai commands straight from the terminal.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if noColor {
				color.NoColor = true
			}
		},
	}

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default ~/.sheetlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output as machine-readable JSON")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&modelName, "model", "", "AI model name override")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "AI provider: ollama | openai | anthropic | vertex")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable ANSI color output")

	// Register subcommands
	rootCmd.AddCommand(serve.NewCommand())
	rootCmd.AddCommand(preview.NewCommand())
	rootCmd.AddCommand(ai.NewCommand())
	rootCmd.AddCommand(cmdconfig.NewCommand())
	rootCmd.AddCommand(doctor.NewCommand())
	rootCmd.AddCommand(completion.NewCommand(rootCmd))
	rootCmd.AddCommand(version.NewCommand())

	return rootCmd
}

// Execute runs the root command and handles any returned errors.
func Execute() {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}
