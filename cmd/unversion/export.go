package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/skosovsky/unversion"
)

var (
	exportFile   string
	exportFilter string
)

// exportDocument mirrors the prompts document schema for both encodings.
type exportDocument struct {
	Version string                      `json:"version" yaml:"version"`
	Prompts map[string]unversion.Prompt `json:"prompts" yaml:"prompts"`
}

var exportCmd = &cobra.Command{
	Use:   "export <output>",
	Short: "Write the loaded prompts to a new file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore(exportFile)
		if err != nil {
			return err
		}
		out := exportDocument{
			Version: store.Version(),
			Prompts: make(map[string]unversion.Prompt),
		}
		for key, prompt := range store.All() {
			if exportFilter != "" && !strings.HasPrefix(key, exportFilter) {
				continue
			}
			prompt.Key = "" // key is the map index in the document
			out.Prompts[key] = prompt
		}
		var data []byte
		if strings.HasSuffix(args[0], ".yaml") || strings.HasSuffix(args[0], ".yml") {
			data, err = yaml.Marshal(out)
		} else {
			data, err = json.MarshalIndent(out, "", "  ")
		}
		if err != nil {
			return fmt.Errorf("encode prompts: %w", err)
		}
		if err := os.WriteFile(args[0], data, 0o600); err != nil {
			return fmt.Errorf("write %s: %w", args[0], err)
		}
		fmt.Printf("Exported %d prompts to %s\n", len(out.Prompts), args[0])
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVarP(&exportFile, "file", "f", "", "Path to prompts file")
	exportCmd.Flags().StringVar(&exportFilter, "filter", "", "Filter by key prefix")
	rootCmd.AddCommand(exportCmd)
}
