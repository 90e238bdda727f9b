package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/skosovsky/unversion/usagelog/sqlitesink"
)

var (
	statsDB    string
	statsLimit int
)

var statsCmd = &cobra.Command{
	Use:   "stats [<key>]",
	Short: "Show recorded usage statistics",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db := statsDB
		if db == "" {
			db = sqlitesink.DefaultPath()
		}
		sink, err := sqlitesink.Open(db)
		if err != nil {
			return err
		}
		defer func() { _ = sink.Close() }()
		ctx := cmd.Context()

		if len(args) == 1 {
			st, err := sink.Stats(ctx, args[0])
			if err != nil {
				return err
			}
			if st.TotalUsage == 0 {
				fmt.Printf("No usage recorded for %q.\n", args[0])
				return nil
			}
			successRate := float64(st.SuccessCount) / float64(st.TotalUsage) * 100
			fmt.Printf("%s\n", st.Key)
			fmt.Printf("  Used: %d times (%.0f%% success)\n", st.TotalUsage, successRate)
			fmt.Printf("  Last: %s\n", st.LastUsed.Format("2006-01-02 15:04:05"))
			if st.LatencySamples > 0 {
				fmt.Printf("  Avg Latency: %.0fms\n", st.AvgLatencyMS)
			}
			for stage, count := range st.ByStage {
				fmt.Printf("  Stage %s: %d\n", stage, count)
			}
			return nil
		}

		top, err := sink.Top(ctx, statsLimit)
		if err != nil {
			return err
		}
		if len(top) == 0 {
			fmt.Println("No usage data yet.")
			return nil
		}
		fmt.Println("=== Top Prompts by Usage ===")
		for _, kc := range top {
			fmt.Printf("  %s: %d\n", kc.Key, kc.Count)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsDB, "db", "", "Path to usage database (default ~/.unversion/usage.db)")
	statsCmd.Flags().IntVarP(&statsLimit, "limit", "n", 20, "Number of prompts to show")
	rootCmd.AddCommand(statsCmd)
}
