// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/genui-engine/internal/edit"
	"github.com/pdiddy/genui-engine/pkg/types"
)

var editCmd = &cobra.Command{
	Use:   "edit <source-file>",
	Short: "Rewrite generated UI sources to use wrapper tags",
	Long: `Edit rewrites a generated source file so that section and view
component references go through fixed wrapper tags. Reference lines are
removed, one import line per used category is synthesized, and every
opening tag of a referenced identifier is replaced by the wrapper form.

The rewritten source is printed to stdout; with --write the input file is
replaced in place. Collected identifiers are reported on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func runEdit(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading source %s: %w", args[0], err)
	}

	result := edit.New(logger).GenUI(string(data), rewriteConfigFromFlags(cmd))

	if result.Sections != nil {
		fmt.Fprintf(os.Stderr, "sections: %s\n", strings.Join(result.Sections, ", "))
	}
	if result.Views != nil {
		fmt.Fprintf(os.Stderr, "views: %s\n", strings.Join(result.Views, ", "))
	}
	if result.Sections == nil && result.Views == nil {
		fmt.Fprintln(os.Stderr, "no component references found")
	}

	write, _ := cmd.Flags().GetBool("write")
	if write {
		return os.WriteFile(args[0], []byte(result.Text), 0o644)
	}

	fmt.Print(result.Text)
	return nil
}

func rewriteConfigFromFlags(cmd *cobra.Command) types.RewriteConfig {
	sectionToken, _ := cmd.Flags().GetString("section-token")
	viewToken, _ := cmd.Flags().GetString("view-token")
	sectionWrapper, _ := cmd.Flags().GetString("section-wrapper")
	viewWrapper, _ := cmd.Flags().GetString("view-wrapper")

	return types.RewriteConfig{
		SectionToken:   sectionToken,
		ViewToken:      viewToken,
		SectionWrapper: sectionWrapper,
		ViewWrapper:    viewWrapper,
	}
}

func init() {
	editCmd.Flags().String("section-token", "", "path token marking section references (default /sections/)")
	editCmd.Flags().String("view-token", "", "path token marking view references (default /views/)")
	editCmd.Flags().String("section-wrapper", "", "wrapper component name for sections (default UiSection)")
	editCmd.Flags().String("view-wrapper", "", "wrapper component name for views (default UiView)")
	editCmd.Flags().Bool("write", false, "rewrite the input file in place")

	rootCmd.AddCommand(editCmd)
}
