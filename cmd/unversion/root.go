package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/skosovsky/unversion"
)

var verbose bool

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "unversion",
	Short: "Manage versionless prompt templates from the command line",
	Long: `Unversion keeps prompt templates in a YAML or JSON document instead of
application code. This CLI lists, inspects, validates, and exports the
document, and reports recorded usage statistics.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelWarn
		if verbose {
			level = slog.LevelDebug
		}
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

// defaultCandidates are conventional prompts-file locations, checked in order.
var defaultCandidates = []string{
	"prompts/bundled.yaml",
	"prompts/bundled.json",
	"prompts.yaml",
	"prompts.json",
	"bundled.json",
	".prompts/bundled.json",
}

// resolvePromptsFile returns the explicit --file value or the first
// conventional location that exists.
func resolvePromptsFile(file string) (string, error) {
	if file != "" {
		return file, nil
	}
	for _, candidate := range defaultCandidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", errors.New("no prompts file found, use --file to specify a path")
}

// openStore resolves the prompts file and opens a store on it.
func openStore(file string) (*unversion.Store, error) {
	path, err := resolvePromptsFile(file)
	if err != nil {
		return nil, err
	}
	return unversion.Open(path)
}
