// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/genui-engine/pkg/types"
)

const exportLimit = 100000

// ExportYAML writes the fragment store to fragmentsDir/index/export.yaml.
// It supports the same filters as Retrieve.
func (s *Store) ExportYAML(ctx context.Context, opts QueryOptions) error {
	fragments, err := s.exportFragments(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.fragmentsDir, indexDir, "export.yaml")
	data, err := yaml.Marshal(fragments)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ExportJSON writes the fragment store to fragmentsDir/index/export.json.
// It supports the same filters as Retrieve.
func (s *Store) ExportJSON(ctx context.Context, opts QueryOptions) error {
	fragments, err := s.exportFragments(ctx, opts)
	if err != nil {
		return err
	}

	path := filepath.Join(s.fragmentsDir, indexDir, "export.json")
	data, err := json.MarshalIndent(fragments, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

func (s *Store) exportFragments(ctx context.Context, opts QueryOptions) ([]types.Fragment, error) {
	opts.MaxResults = exportLimit
	results, err := s.Retrieve(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}

	fragments := make([]types.Fragment, len(results))
	for i, r := range results {
		fragments[i] = r.Fragment
	}

	return fragments, nil
}
