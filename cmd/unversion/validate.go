package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skosovsky/unversion/manifest"
)

var validateCmd = &cobra.Command{
	Use:   "validate <path>",
	Short: "Check a prompts file, reporting every issue",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		out := cmd.OutOrStdout()
		issues := manifest.Lint(data)
		var errCount, warnCount int
		for _, issue := range issues {
			if issue.Severity == manifest.SeverityError {
				errCount++
			} else {
				warnCount++
			}
		}
		if errCount > 0 {
			fmt.Fprintln(out, "Errors:")
			for _, issue := range issues {
				if issue.Severity == manifest.SeverityError {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}
		}
		if warnCount > 0 {
			fmt.Fprintln(out, "Warnings:")
			for _, issue := range issues {
				if issue.Severity == manifest.SeverityWarning {
					fmt.Fprintf(out, "  - %s\n", issue)
				}
			}
		}
		if errCount > 0 {
			return fmt.Errorf("%d error(s) in %s", errCount, args[0])
		}
		// warnings don't make the file invalid; always report the count
		doc, err := manifest.ParseBytes(data)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Valid! %d prompts found.\n", len(doc.Prompts))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
