// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/genui-engine/internal/producer"
	"github.com/pdiddy/genui-engine/pkg/types"
)

var generateCmd = &cobra.Command{
	Use:   "generate <request-file>",
	Short: "Produce a completion from the generative backend",
	Long: `Generate wraps a UI request in the app-builder prompt contract, sends
it to the Claude API, and writes the raw completion into the completions
directory for the extract stage to consume.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	request, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading request %s: %w", args[0], err)
	}

	model, _ := cmd.Flags().GetString("model")
	apiKey, _ := cmd.Flags().GetString("api-key")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	completionsDir, _ := cmd.Flags().GetString("completions-dir")
	labels, _ := cmd.Flags().GetStringSlice("labels")

	apiKey = secretDefault("anthropic-api-key", apiKey)
	if apiKey == "" {
		return fmt.Errorf("an Anthropic API key is required: set --api-key or .secrets/anthropic-api-key")
	}

	cfg := types.ProducerConfig{
		AIConfig: types.AIConfig{
			Model:      model,
			APIKey:     apiKey,
			MaxRetries: maxRetries,
		},
		CompletionsDir: completionsDir,
	}

	prompt, err := producer.RenderPrompt(string(request), labels)
	if err != nil {
		return fmt.Errorf("rendering prompt: %w", err)
	}

	backend := &producer.ClaudeBackend{APIKey: cfg.APIKey, Model: cfg.Model}
	completionID := strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))

	completion, err := producer.Produce(context.Background(), backend, completionID, prompt, cfg)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.CompletionsDir, 0o755); err != nil {
		return fmt.Errorf("creating completions directory: %w", err)
	}
	outPath := filepath.Join(cfg.CompletionsDir, completion.ID+".txt")
	if err := os.WriteFile(outPath, []byte(completion.Text), 0o644); err != nil {
		return fmt.Errorf("writing completion: %w", err)
	}

	fmt.Printf("Wrote %s\n", outPath)
	return nil
}

func init() {
	generateCmd.Flags().String("model", "claude-sonnet-4-5-20250929", "AI model identifier")
	generateCmd.Flags().String("api-key", "", "Anthropic API key (overrides .secrets/)")
	generateCmd.Flags().Int("max-retries", 3, "retry attempts for failed API calls")
	generateCmd.Flags().String("completions-dir", "completions", "directory for produced completions")
	generateCmd.Flags().StringSlice("labels", []string{"js", "css", "html"}, "delimiter labels the completion must use")

	rootCmd.AddCommand(generateCmd)
}
