// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/genui-engine/internal/store"
	"github.com/pdiddy/genui-engine/pkg/types"
)

var fragmentsCmd = &cobra.Command{
	Use:   "fragments",
	Short: "Manage the fragment store (store, retrieve, export)",
	Long: `Fragments manages a local SQLite store built from extraction results.
Use subcommands to index fragments, query them, or export.`,
}

// --- store subcommand ---

var fragmentsStoreCmd = &cobra.Command{
	Use:   "store",
	Short: "Ingest extraction results into the fragment store",
	Long: `Store reads extraction YAML files from fragments/extracted/, ingests
them into a SQLite database with FTS5 indexing, and writes an export file.
Unchanged completions are skipped on subsequent runs.`,
	RunE: runFragmentsStore,
}

func runFragmentsStore(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(fragmentStoreConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	summary, err := s.Ingest(context.Background(), os.Stdout)
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d completion(s) failed indexing", summary.Failed)
	}
	return nil
}

// --- retrieve subcommand ---

var fragmentsRetrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Query the fragment store with full-text search and filters",
	Long: `Retrieve searches the fragment store using FTS5 full-text search,
structured filters (kind, label, completion), or a combination of both.`,
	RunE: runFragmentsRetrieve,
}

func runFragmentsRetrieve(cmd *cobra.Command, args []string) error {
	s, err := store.NewStore(fragmentStoreConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)
	if opts.IsEmpty() {
		return fmt.Errorf("query or filter required: provide a search query, --kind, --label, or --completion")
	}

	results, err := s.Retrieve(context.Background(), opts)
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	return formatRetrieveOutput(results, jsonOutput)
}

func formatRetrieveOutput(results []store.QueryResult, jsonOutput bool) error {
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	if len(results) == 0 {
		fmt.Println("No results found.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-4s  %-12s  %-10s  %-50s  %-20s  %s\n",
		"Rank", "Kind", "Label", "Content", "Completion", "Line")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 108))

	for i, r := range results {
		content := strings.ReplaceAll(r.Content, "\n", " ")
		if len(content) > 50 {
			content = content[:47] + "..."
		}
		completion := r.CompletionID
		if len(completion) > 20 {
			completion = completion[:17] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-4d  %-12s  %-10s  %-50s  %-20s  %d\n",
			i+1, r.Kind, r.Label, content, completion, r.Line)
	}

	fmt.Fprintf(os.Stdout, "\n%d results\n", len(results))
	return nil
}

// --- export subcommand ---

var fragmentsExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the fragment store to YAML or JSON",
	Long: `Export writes the full fragment store (or a filtered subset) to
fragments/index/export.yaml or export.json. Supports the same filter
flags as retrieve for partial exports.`,
	RunE: runFragmentsExport,
}

func runFragmentsExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	s, err := store.NewStore(fragmentStoreConfig(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	opts := queryOptsFromFlags(cmd, args)

	switch format {
	case "yaml", "":
		if err := s.ExportYAML(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to fragments/index/export.yaml")
	case "json":
		if err := s.ExportJSON(context.Background(), opts); err != nil {
			return err
		}
		fmt.Println("Exported to fragments/index/export.json")
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	return nil
}

// --- shared helpers ---

func fragmentStoreConfig(cmd *cobra.Command) types.FragmentStoreConfig {
	fragmentsDir, _ := cmd.Flags().GetString("fragments-dir")
	if fragmentsDir == "" {
		fragmentsDir = "fragments"
	}
	maxResults, _ := cmd.Flags().GetInt("max-results")

	return types.FragmentStoreConfig{
		FragmentsDir: fragmentsDir,
		MaxResults:   maxResults,
	}
}

func queryOptsFromFlags(cmd *cobra.Command, args []string) store.QueryOptions {
	queryText, _ := cmd.Flags().GetString("query")
	if queryText == "" && len(args) > 0 {
		queryText = strings.Join(args, " ")
	}

	kind, _ := cmd.Flags().GetString("kind")
	label, _ := cmd.Flags().GetString("label")
	completionID, _ := cmd.Flags().GetString("completion")
	limit, _ := cmd.Flags().GetInt("limit")

	return store.QueryOptions{
		Query:        queryText,
		Kind:         types.FragmentKind(kind),
		Label:        label,
		CompletionID: completionID,
		MaxResults:   limit,
	}
}

func init() {
	// Shared flags on the parent command, inherited by subcommands.
	fragmentsCmd.PersistentFlags().String("fragments-dir", "fragments", "base directory for fragments (contains extracted/, index/)")
	fragmentsCmd.PersistentFlags().Int("max-results", 20, "maximum number of query results")

	// Retrieve flags.
	fragmentsRetrieveCmd.Flags().String("query", "", "full-text search query")
	fragmentsRetrieveCmd.Flags().String("kind", "", "filter by fragment kind: code, document, annotation")
	fragmentsRetrieveCmd.Flags().String("label", "", "filter by delimiter label or annotation type")
	fragmentsRetrieveCmd.Flags().String("completion", "", "filter by completion ID")
	fragmentsRetrieveCmd.Flags().Int("limit", 0, "maximum results (0 = use default)")
	fragmentsRetrieveCmd.Flags().Bool("json", false, "output results as JSON")

	// Export flags.
	fragmentsExportCmd.Flags().String("format", "yaml", "export format: yaml or json")
	fragmentsExportCmd.Flags().String("query", "", "full-text search filter for partial export")
	fragmentsExportCmd.Flags().String("kind", "", "filter by fragment kind for partial export")
	fragmentsExportCmd.Flags().String("label", "", "filter by label for partial export")
	fragmentsExportCmd.Flags().String("completion", "", "filter by completion ID for partial export")
	fragmentsExportCmd.Flags().Int("limit", 0, "maximum fragments to export (0 = all)")

	// Wire subcommands.
	fragmentsCmd.AddCommand(fragmentsStoreCmd)
	fragmentsCmd.AddCommand(fragmentsRetrieveCmd)
	fragmentsCmd.AddCommand(fragmentsExportCmd)

	rootCmd.AddCommand(fragmentsCmd)
}
