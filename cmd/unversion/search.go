package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var searchFile string

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search prompt keys, texts, and notes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(searchFile)
		if err != nil {
			return err
		}
		query := strings.ToLower(args[0])
		var matches []string
		for key, prompt := range store.All() {
			if strings.Contains(strings.ToLower(key), query) ||
				strings.Contains(strings.ToLower(prompt.Text), query) ||
				strings.Contains(strings.ToLower(prompt.Notes), query) {
				matches = append(matches, key)
			}
		}
		fmt.Printf("Found %d matches for %q:\n", len(matches), args[0])
		for _, key := range matches {
			fmt.Printf("  %s\n", key)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().StringVarP(&searchFile, "file", "f", "", "Path to prompts file")
	rootCmd.AddCommand(searchCmd)
}
