// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract identifies typed fragments within generated text.
// decorators.go handles inline @need annotation scanning.
package extract

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/genui-engine/pkg/types"
)

// needRe matches an inline annotation marker of the form
// @need:<type>:<description>. The type is any run of characters excluding
// colons; the description is the remainder of the line.
var needRe = regexp.MustCompile(`@need:([^:]*):(.*)`)

// Snippet window around an annotation line, in lines.
const (
	snippetBefore = 5
	snippetAfter  = 15
)

// elision marks the clipped edges of a context snippet.
const elision = "..."

// Decorators scans source code for @need annotations and returns each
// with a bounded context snippet. Lines without a marker are skipped;
// markers with an empty type or description are logged and skipped. The
// result is in source order and may be empty; "no annotations" is an
// empty slice, never an error.
func (e *Extractor) Decorators(source string) []types.Annotation {
	annotations := []types.Annotation{}
	if source == "" {
		return annotations
	}

	lines := strings.Split(source, "\n")
	for i, line := range lines {
		m := needRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		needType := strings.TrimSpace(m[1])
		description := strings.TrimSpace(m[2])
		if needType == "" || description == "" {
			e.log.Warn("decorators: malformed annotation",
				zap.Int("line", i+1), zap.String("text", strings.TrimSpace(line)))
			continue
		}

		annotations = append(annotations, types.Annotation{
			Type:        needType,
			Description: description,
			Snippet:     snippet(lines, i),
			Line:        i + 1,
		})
	}

	return annotations
}

// snippet returns a fixed context window around line index i: up to
// snippetBefore lines before and snippetAfter lines after, clamped to the
// source bounds and wrapped in elision lines.
func snippet(lines []string, i int) string {
	start := i - snippetBefore
	if start < 0 {
		start = 0
	}
	end := i + snippetAfter + 1
	if end > len(lines) {
		end = len(lines)
	}
	window := strings.Join(lines[start:end], "\n")
	return elision + "\n" + window + "\n" + elision
}
