package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var viewFile string

var viewCmd = &cobra.Command{
	Use:   "view <key>",
	Short: "Show one prompt with its metadata",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(viewFile)
		if err != nil {
			return err
		}
		key := args[0]
		prompt, ok := store.Get(key)
		if !ok {
			return fmt.Errorf("prompt %q not found", key)
		}
		fmt.Printf("=== %s ===\n", key)
		fmt.Printf("Source: %s\n", valueOr(prompt.Source, "none"))
		fmt.Printf("Variables: %s\n", valueOr(strings.Join(prompt.Variables, ", "), "none"))
		fmt.Printf("Notes: %s\n", valueOr(prompt.Notes, "none"))
		fmt.Printf("\n--- Text (%d chars) ---\n", len(prompt.Text))
		fmt.Println(prompt.Text)
		fmt.Println("---")
		return nil
	},
}

func valueOr(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func init() {
	viewCmd.Flags().StringVarP(&viewFile, "file", "f", "", "Path to prompts file")
	rootCmd.AddCommand(viewCmd)
}
