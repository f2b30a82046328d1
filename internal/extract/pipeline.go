// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/genui-engine/pkg/types"
)

const (
	completionExt = ".txt"
	extractedDir  = "extracted"
)

// BatchSummary holds counts from a batch extraction run.
type BatchSummary struct {
	Extracted int
	Skipped   int
	Failed    int
}

// Total returns the number of completions processed.
func (s BatchSummary) Total() int {
	return s.Extracted + s.Skipped + s.Failed
}

// HasFailures reports whether any completions failed.
func (s BatchSummary) HasFailures() bool {
	return s.Failed > 0
}

// ExtractAll processes all completion text files in cfg.CompletionsDir,
// extracts fragments per the configured labels, and writes results to
// cfg.FragmentsDir/extracted/. Unchanged completions are skipped and
// changed ones re-extracted.
func (e *Extractor) ExtractAll(ctx context.Context, cfg types.ExtractionConfig, w io.Writer) (BatchSummary, error) {
	outDir := filepath.Join(cfg.FragmentsDir, extractedDir)

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return BatchSummary{}, fmt.Errorf("creating output directory: %w", err)
	}

	entries, err := os.ReadDir(cfg.CompletionsDir)
	if err != nil {
		return BatchSummary{}, fmt.Errorf("reading completions directory %s: %w", cfg.CompletionsDir, err)
	}

	var summary BatchSummary

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), completionExt) {
			continue
		}

		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		completionID := strings.TrimSuffix(entry.Name(), completionExt)
		srcPath := filepath.Join(cfg.CompletionsDir, entry.Name())
		outPath := filepath.Join(outDir, completionID+"-fragments.yaml")

		changed, err := hasChanged(srcPath, outPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", completionID, err)
			summary.Failed++
			continue
		}
		if !changed {
			fmt.Fprintf(w, "skipped %s\n", completionID)
			summary.Skipped++
			continue
		}

		fmt.Fprintf(w, "extracting %s\n", completionID)

		data, err := os.ReadFile(srcPath)
		if err != nil {
			fmt.Fprintf(w, "failed  %s: %v\n", completionID, err)
			summary.Failed++
			continue
		}

		result := e.ExtractCompletion(types.Completion{ID: completionID, Text: string(data)}, cfg)
		if result.Error != "" {
			fmt.Fprintf(w, "failed  %s: %s\n", completionID, result.Error)
			summary.Failed++
			continue
		}

		if err := writeResult(outPath, result); err != nil {
			fmt.Fprintf(w, "failed  %s: write error: %v\n", completionID, err)
			summary.Failed++
			continue
		}

		fmt.Fprintf(w, "extracted %s (%d fragments)\n", completionID, len(result.Fragments))
		summary.Extracted++
	}

	return summary, nil
}

// ExtractCompletion runs the configured extractions over one completion
// and assembles an ExtractionResult. With labels it extracts one code
// fragment per matched label; without labels it extracts the first fenced
// block. When cfg.Decorators is set, @need annotations are collected as
// annotation fragments regardless of fence outcome. A completion yielding
// zero fragments is recorded as a failure in the result's Error field.
func (e *Extractor) ExtractCompletion(c types.Completion, cfg types.ExtractionConfig) *types.ExtractionResult {
	result := &types.ExtractionResult{CompletionID: c.ID}

	if len(cfg.Labels) > 0 {
		blocks, err := e.MultiBackticks(c.Text, cfg.Labels)
		if err == nil {
			// Preserve the caller's label order in the output.
			for _, label := range cfg.Labels {
				body, ok := blocks[label]
				if !ok {
					continue
				}
				result.Fragments = append(result.Fragments, types.Fragment{
					ID:           types.StableID(c.ID, label, body),
					Kind:         types.FragmentCode,
					Label:        label,
					Content:      body,
					CompletionID: c.ID,
				})
			}
		}
	} else {
		body, err := e.Backticks(c.Text)
		if err == nil {
			result.Fragments = append(result.Fragments, types.Fragment{
				ID:           types.StableID(c.ID, "", body),
				Kind:         types.FragmentCode,
				Content:      body,
				CompletionID: c.ID,
			})
		}
	}

	if cfg.Decorators {
		for _, a := range e.Decorators(c.Text) {
			result.Fragments = append(result.Fragments, types.Fragment{
				ID:           types.StableID(c.ID, a.Type, a.Description),
				Kind:         types.FragmentAnnotation,
				Label:        a.Type,
				Content:      a.Description,
				CompletionID: c.ID,
				Line:         a.Line,
			})
		}
	}

	if len(result.Fragments) == 0 {
		result.Error = "no fragments extracted"
	}

	return result
}

// hasChanged reports whether the completion file is newer than the output
// file. Returns true if the output does not exist or the source is more
// recent.
func hasChanged(srcPath, outPath string) (bool, error) {
	srcInfo, err := os.Stat(srcPath)
	if err != nil {
		return false, fmt.Errorf("stat completion %s: %w", srcPath, err)
	}

	outInfo, err := os.Stat(outPath)
	if err != nil {
		if os.IsNotExist(err) {
			return true, nil
		}
		return false, fmt.Errorf("stat output %s: %w", outPath, err)
	}

	return srcInfo.ModTime().After(outInfo.ModTime()), nil
}

// writeResult marshals the ExtractionResult to a YAML file.
func writeResult(path string, result *types.ExtractionResult) error {
	data, err := yaml.Marshal(result)
	if err != nil {
		return fmt.Errorf("marshaling result: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}
