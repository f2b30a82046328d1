// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package edit rewrites generated source so that references to
// dynamically generated UI components go through fixed wrapper tags. The
// rewrite is designed never to fail: invalid or surprising input returns
// the original text untouched.
package edit

import (
	"strings"

	"go.uber.org/zap"

	"github.com/pdiddy/genui-engine/pkg/types"
)

// Editor performs the genUi reference rewrite. Safe for concurrent use.
type Editor struct {
	log *zap.Logger
}

// New returns an Editor that writes diagnostics to log. A nil log
// disables diagnostics.
func New(log *zap.Logger) *Editor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Editor{log: log}
}

// GenUI rewrites lines referencing section and view components into
// wrapper-tagged equivalents. Reference lines (those containing the
// section or view path token) are removed; one synthesized import line
// per category actually used is prepended; every opening tag of a
// referenced identifier is replaced by the wrapper tag carrying the
// identifier as an attribute.
//
// The tag substitution is a global textual replacement of "<identifier",
// not scoped to tag boundaries. An identifier that is a prefix of a
// longer identifier would also match inside it; this is accepted because
// the input is generator-controlled.
//
// GenUI never fails. Empty input is returned unchanged with both ID sets
// nil, and a reference line too short to carry an identifier aborts the
// transform and returns the original input rather than partial output.
func (e *Editor) GenUI(text string, cfg types.RewriteConfig) types.RewriteResult {
	if text == "" {
		e.log.Warn("genui: empty input")
		return types.RewriteResult{Text: text}
	}

	cfg = cfg.WithDefaults()

	var (
		kept     []string
		sections []string
		views    []string
	)

	for i, line := range strings.Split(text, "\n") {
		switch {
		case strings.Contains(line, cfg.SectionToken):
			id, ok := referencedID(line)
			if !ok {
				e.log.Error("genui: malformed section reference, keeping input",
					zap.Int("line", i+1), zap.String("text", strings.TrimSpace(line)))
				return types.RewriteResult{Text: text}
			}
			sections = appendUnique(sections, id)
		case strings.Contains(line, cfg.ViewToken):
			id, ok := referencedID(line)
			if !ok {
				e.log.Error("genui: malformed view reference, keeping input",
					zap.Int("line", i+1), zap.String("text", strings.TrimSpace(line)))
				return types.RewriteResult{Text: text}
			}
			views = appendUnique(views, id)
		default:
			kept = append(kept, line)
		}
	}

	out := strings.Join(kept, "\n")
	out = substitute(out, sections, cfg.SectionWrapper, cfg.SectionImport)
	out = substitute(out, views, cfg.ViewWrapper, cfg.ViewImport)

	return types.RewriteResult{Text: out, Sections: sections, Views: views}
}

// referencedID returns the identifier on a reference line: the second
// whitespace-delimited field (e.g. `import Hero from "./sections/Hero"`).
func referencedID(line string) (string, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return "", false
	}
	return fields[1], true
}

// substitute prepends the wrapper import and rewrites every opening tag
// of the collected identifiers. A nil identifier set leaves the text
// unchanged.
func substitute(text string, ids []string, wrapper, importLine string) string {
	if len(ids) == 0 {
		return text
	}
	text = importLine + "\n" + text
	for _, id := range ids {
		text = strings.ReplaceAll(text, "<"+id, "<"+wrapper+` id="`+id+`"`)
	}
	return text
}

// appendUnique adds id to ids if not already present, preserving
// first-seen order.
func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}
