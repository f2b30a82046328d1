package extract

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/genui-engine/pkg/types"
)

func writeCompletion(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestExtractCompletion(t *testing.T) {
	e := testExtractor()

	t.Run("single block without labels", func(t *testing.T) {
		result := e.ExtractCompletion(
			types.Completion{ID: "c1", Text: "```\nhello\n```"},
			types.ExtractionConfig{},
		)
		if result.Error != "" {
			t.Fatalf("unexpected error: %s", result.Error)
		}
		if len(result.Fragments) != 1 {
			t.Fatalf("got %d fragments, want 1", len(result.Fragments))
		}
		f := result.Fragments[0]
		if f.Kind != types.FragmentCode || f.Content != "hello" || f.CompletionID != "c1" {
			t.Errorf("unexpected fragment: %+v", f)
		}
		if f.ID != types.StableID("c1", "", "hello") {
			t.Errorf("fragment ID not stable: %s", f.ID)
		}
	})

	t.Run("labeled blocks preserve label order", func(t *testing.T) {
		result := e.ExtractCompletion(
			types.Completion{ID: "c2", Text: "```js\na();\n```\n```css\nb {}\n```"},
			types.ExtractionConfig{Labels: []string{"js", "css"}},
		)
		if len(result.Fragments) != 2 {
			t.Fatalf("got %d fragments, want 2", len(result.Fragments))
		}
		if result.Fragments[0].Label != "js" || result.Fragments[1].Label != "css" {
			t.Errorf("labels out of order: %+v", result.Fragments)
		}
	})

	t.Run("decorators are collected alongside blocks", func(t *testing.T) {
		result := e.ExtractCompletion(
			types.Completion{ID: "c3", Text: "```\ncode\n```\n// @need:api:fetch data"},
			types.ExtractionConfig{Decorators: true},
		)
		if len(result.Fragments) != 2 {
			t.Fatalf("got %d fragments, want 2", len(result.Fragments))
		}
		a := result.Fragments[1]
		if a.Kind != types.FragmentAnnotation || a.Label != "api" || a.Line != 4 {
			t.Errorf("unexpected annotation fragment: %+v", a)
		}
	})

	t.Run("nothing extracted is a failure", func(t *testing.T) {
		result := e.ExtractCompletion(
			types.Completion{ID: "c4", Text: "no fences here"},
			types.ExtractionConfig{},
		)
		if result.Error == "" {
			t.Error("expected Error to be set for empty result")
		}
	})
}

func TestExtractAll(t *testing.T) {
	completionsDir := t.TempDir()
	fragmentsDir := t.TempDir()

	writeCompletion(t, completionsDir, "good.txt", "```js\nok();\n```")
	writeCompletion(t, completionsDir, "bad.txt", "no fences at all")
	writeCompletion(t, completionsDir, "ignored.md", "```\nnot a .txt file\n```")

	cfg := types.ExtractionConfig{
		CompletionsDir: completionsDir,
		FragmentsDir:   fragmentsDir,
		Labels:         []string{"js"},
	}

	var out bytes.Buffer
	summary, err := testExtractor().ExtractAll(context.Background(), cfg, &out)
	if err != nil {
		t.Fatalf("ExtractAll() error: %v", err)
	}

	if summary.Extracted != 1 || summary.Failed != 1 || summary.Skipped != 0 {
		t.Errorf("summary = %+v, want 1 extracted, 1 failed", summary)
	}
	if !summary.HasFailures() {
		t.Error("HasFailures() = false, want true")
	}
	if summary.Total() != 2 {
		t.Errorf("Total() = %d, want 2", summary.Total())
	}

	// The output file round-trips through YAML.
	data, err := os.ReadFile(filepath.Join(fragmentsDir, "extracted", "good-fragments.yaml"))
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	var result types.ExtractionResult
	if err := yaml.Unmarshal(data, &result); err != nil {
		t.Fatalf("parsing output: %v", err)
	}
	if result.CompletionID != "good" || len(result.Fragments) != 1 {
		t.Errorf("unexpected result: %+v", result)
	}
	if result.Fragments[0].Content != "ok();" {
		t.Errorf("fragment content = %q, want %q", result.Fragments[0].Content, "ok();")
	}

	// A second run skips the unchanged completion.
	summary, err = testExtractor().ExtractAll(context.Background(), cfg, &out)
	if err != nil {
		t.Fatalf("second ExtractAll() error: %v", err)
	}
	if summary.Skipped != 1 {
		t.Errorf("second run skipped = %d, want 1", summary.Skipped)
	}
}
