// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/genui-engine/internal/extract"
	"github.com/pdiddy/genui-engine/pkg/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract [completion-file]",
	Short: "Extract typed fragments from completion text",
	Long: `Extract pulls fenced code blocks and inline @need annotations out of
completion text. With --labels it extracts one block per label in order;
without labels it extracts the first well-formed fenced block.

Given a file argument it processes that single completion and prints the
result as YAML. With --batch it walks the completions directory and
writes one fragments file per completion, skipping unchanged inputs.`,
	RunE: runExtract,
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := extractionConfigFromFlags(cmd)
	e := extract.New(logger)

	batch, _ := cmd.Flags().GetBool("batch")
	if batch {
		summary, err := e.ExtractAll(context.Background(), cfg, os.Stdout)
		if err != nil {
			return err
		}
		if summary.HasFailures() {
			return fmt.Errorf("%d completion(s) failed extraction", summary.Failed)
		}
		return nil
	}

	if len(args) != 1 {
		return fmt.Errorf("a completion file is required unless --batch is set")
	}

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading completion %s: %w", args[0], err)
	}

	completionID := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	result := e.ExtractCompletion(types.Completion{ID: completionID, Text: string(data)}, cfg)
	if result.Error != "" {
		return fmt.Errorf("extracting %s: %s", completionID, result.Error)
	}

	out, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	fmt.Print(string(out))
	return nil
}

func extractionConfigFromFlags(cmd *cobra.Command) types.ExtractionConfig {
	completionsDir, _ := cmd.Flags().GetString("completions-dir")
	fragmentsDir, _ := cmd.Flags().GetString("fragments-dir")
	labels, _ := cmd.Flags().GetStringSlice("labels")
	decorators, _ := cmd.Flags().GetBool("decorators")

	return types.ExtractionConfig{
		CompletionsDir: completionsDir,
		FragmentsDir:   fragmentsDir,
		Labels:         labels,
		Decorators:     decorators,
	}
}

func init() {
	extractCmd.Flags().StringSlice("labels", nil, "delimiter labels in expected source order (e.g. js,css,html)")
	extractCmd.Flags().Bool("decorators", false, "also scan for @need annotations")
	extractCmd.Flags().String("completions-dir", "completions", "directory of completion text files (batch mode)")
	extractCmd.Flags().String("fragments-dir", "fragments", "base directory for extraction output (contains extracted/)")
	extractCmd.Flags().Bool("batch", false, "process all changed completions in completions-dir")

	rootCmd.AddCommand(extractCmd)
}
