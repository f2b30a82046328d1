// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/genui-engine/pkg/types"
)

// newTestStore creates a store over a temp fragments directory with one
// extraction result already on disk.
func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()

	fragmentsDir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(fragmentsDir, extractedDir), 0o755))

	s, err := NewStore(types.FragmentStoreConfig{FragmentsDir: fragmentsDir})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	return s, fragmentsDir
}

func writeExtractionResult(t *testing.T, fragmentsDir string, result types.ExtractionResult) {
	t.Helper()
	data, err := yaml.Marshal(result)
	require.NoError(t, err)
	path := filepath.Join(fragmentsDir, extractedDir, result.CompletionID+"-fragments.yaml")
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func sampleResult(completionID string) types.ExtractionResult {
	return types.ExtractionResult{
		CompletionID: completionID,
		Fragments: []types.Fragment{
			{
				ID:           types.StableID(completionID, "js", "function hero() {}"),
				Kind:         types.FragmentCode,
				Label:        "js",
				Content:      "function hero() {}",
				CompletionID: completionID,
			},
			{
				ID:           types.StableID(completionID, "api", "fetch user data"),
				Kind:         types.FragmentAnnotation,
				Label:        "api",
				Content:      "fetch user data",
				CompletionID: completionID,
				Line:         7,
			},
		},
	}
}

func TestIngestAndRetrieve(t *testing.T) {
	s, fragmentsDir := newTestStore(t)
	writeExtractionResult(t, fragmentsDir, sampleResult("page-001"))

	var out bytes.Buffer
	summary, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Indexed)
	assert.Equal(t, 0, summary.Failed)

	results, err := s.Retrieve(context.Background(), QueryOptions{CompletionID: "page-001"})
	require.NoError(t, err)
	require.Len(t, results, 2)

	// Kind filter narrows to the annotation fragment.
	results, err = s.Retrieve(context.Background(), QueryOptions{Kind: types.FragmentAnnotation})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "api", results[0].Label)
	assert.Equal(t, 7, results[0].Line)
}

func TestIngestSkipsUnchanged(t *testing.T) {
	s, fragmentsDir := newTestStore(t)
	writeExtractionResult(t, fragmentsDir, sampleResult("page-001"))

	var out bytes.Buffer
	_, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)

	summary, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Skipped)
	assert.Equal(t, 0, summary.Indexed)
}

func TestIngestUpdatesChanged(t *testing.T) {
	s, fragmentsDir := newTestStore(t)
	writeExtractionResult(t, fragmentsDir, sampleResult("page-001"))

	var out bytes.Buffer
	_, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)

	// Rewrite the result with different content and a bumped mod time.
	updated := types.ExtractionResult{
		CompletionID: "page-001",
		Fragments: []types.Fragment{
			{
				ID:           types.StableID("page-001", "css", "body {}"),
				Kind:         types.FragmentCode,
				Label:        "css",
				Content:      "body {}",
				CompletionID: "page-001",
			},
		},
	}
	writeExtractionResult(t, fragmentsDir, updated)
	path := filepath.Join(fragmentsDir, extractedDir, "page-001-fragments.yaml")
	bumpModTime(t, path)

	summary, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Updated)

	// Old fragments are replaced, not accumulated.
	results, err := s.Retrieve(context.Background(), QueryOptions{CompletionID: "page-001"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "css", results[0].Label)
}

func bumpModTime(t *testing.T, path string) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)
	newTime := info.ModTime().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(path, newTime, newTime))
}

func TestIngestMalformedYAML(t *testing.T) {
	s, fragmentsDir := newTestStore(t)
	path := filepath.Join(fragmentsDir, extractedDir, "broken-fragments.yaml")
	require.NoError(t, os.WriteFile(path, []byte("{not yaml"), 0o644))

	var out bytes.Buffer
	summary, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Failed)
	assert.Contains(t, out.String(), "broken")
}

func TestRetrieveFullText(t *testing.T) {
	s, fragmentsDir := newTestStore(t)
	writeExtractionResult(t, fragmentsDir, sampleResult("page-001"))

	var out bytes.Buffer
	_, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)

	results, err := s.Retrieve(context.Background(), QueryOptions{Query: "hero"})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.FragmentCode, results[0].Kind)

	results, err = s.Retrieve(context.Background(), QueryOptions{Query: "nomatch"})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestRetrieveMaxResults(t *testing.T) {
	s, fragmentsDir := newTestStore(t)
	writeExtractionResult(t, fragmentsDir, sampleResult("page-001"))
	writeExtractionResult(t, fragmentsDir, sampleResult("page-002"))

	var out bytes.Buffer
	_, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)

	results, err := s.Retrieve(context.Background(), QueryOptions{MaxResults: 1})
	require.NoError(t, err)
	assert.Len(t, results, 1)
}

func TestExport(t *testing.T) {
	s, fragmentsDir := newTestStore(t)
	writeExtractionResult(t, fragmentsDir, sampleResult("page-001"))

	var out bytes.Buffer
	_, err := s.Ingest(context.Background(), &out)
	require.NoError(t, err)

	// Ingest refreshes export.yaml on its own.
	yamlPath := filepath.Join(fragmentsDir, indexDir, "export.yaml")
	data, err := os.ReadFile(yamlPath)
	require.NoError(t, err)

	var fragments []types.Fragment
	require.NoError(t, yaml.Unmarshal(data, &fragments))
	assert.Len(t, fragments, 2)

	require.NoError(t, s.ExportJSON(context.Background(), QueryOptions{Kind: types.FragmentCode}))
	jsonData, err := os.ReadFile(filepath.Join(fragmentsDir, indexDir, "export.json"))
	require.NoError(t, err)
	assert.Contains(t, string(jsonData), "function hero() {}")
}

func TestQueryOptionsIsEmpty(t *testing.T) {
	assert.True(t, QueryOptions{}.IsEmpty())
	assert.True(t, QueryOptions{MaxResults: 5}.IsEmpty())
	assert.False(t, QueryOptions{Query: "x"}.IsEmpty())
	assert.False(t, QueryOptions{Kind: types.FragmentCode}.IsEmpty())
}
