// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/genui-engine/internal/parse"
	"github.com/pdiddy/genui-engine/pkg/types"
)

var parseCmd = &cobra.Command{
	Use:   "parse <payload-file>",
	Short: "Parse a YAML payload from completion text",
	Long: `Parse decodes a single YAML document carried in completion text into a
value tree and prints it. A payload that fails to decode, or decodes to
null, is a parse failure.`,
	Args: cobra.ExactArgs(1),
	RunE: runParse,
}

func runParse(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading payload %s: %w", args[0], err)
	}

	completionID := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	doc, err := parse.New(logger).YAML(types.Completion{ID: completionID, Text: string(data)})
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("re-encoding document: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func init() {
	parseCmd.Flags().Bool("json", false, "print the value tree as JSON instead of YAML")

	rootCmd.AddCommand(parseCmd)
}
