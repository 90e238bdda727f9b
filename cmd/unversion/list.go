package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var (
	listFile   string
	listFilter string
	listStats  bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all prompt keys",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(listFile)
		if err != nil {
			return err
		}
		keys := store.ListKeys(listFilter)
		if !listStats {
			for _, key := range keys {
				fmt.Println(key)
			}
			return nil
		}
		// group by first dot segment
		prefixes := make(map[string]int)
		for _, key := range keys {
			prefix, _, _ := strings.Cut(key, ".")
			prefixes[prefix]++
		}
		fmt.Printf("Total prompts: %d\n", len(keys))
		fmt.Println("\nBy prefix:")
		names := make([]string, 0, len(prefixes))
		for name := range prefixes {
			names = append(names, name)
		}
		sort.Slice(names, func(i, j int) bool {
			if prefixes[names[i]] != prefixes[names[j]] {
				return prefixes[names[i]] > prefixes[names[j]]
			}
			return names[i] < names[j]
		})
		for _, name := range names {
			fmt.Printf("  %s: %d\n", name, prefixes[name])
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVarP(&listFile, "file", "f", "", "Path to prompts file")
	listCmd.Flags().StringVar(&listFilter, "filter", "", "Filter by key prefix")
	listCmd.Flags().BoolVarP(&listStats, "stats", "s", false, "Show counts grouped by key prefix")
	rootCmd.AddCommand(listCmd)
}
