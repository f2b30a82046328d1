// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"crypto/sha256"
	"fmt"
)

// Completion is one payload of generated text as produced by the model
// backend. ID is a caller-chosen slug (usually the completion file name)
// used for provenance on extracted fragments.
type Completion struct {
	// ID identifies the completion (e.g. "landing-page-001").
	ID string `json:"id" yaml:"id"`

	// Text is the raw generated text, fences and all.
	Text string `json:"text" yaml:"text"`
}

// Annotation is one inline @need marker found in generated source code.
type Annotation struct {
	// Type is the capability category from the marker (e.g. "api").
	Type string `json:"type" yaml:"type"`

	// Description is the free-text remainder of the marker line.
	Description string `json:"description" yaml:"description"`

	// Snippet is the surrounding source context, wrapped in elision lines.
	Snippet string `json:"snippet" yaml:"snippet"`

	// Line is the 1-based line number of the marker in the source.
	Line int `json:"line" yaml:"line"`
}

// RewriteResult is the output of the genUi reference rewrite. A nil
// Sections or Views slice means no reference of that category was found;
// a non-nil slice holds the referenced identifiers in first-seen order.
type RewriteResult struct {
	Text     string   `json:"text" yaml:"text"`
	Sections []string `json:"sections" yaml:"sections"`
	Views    []string `json:"views" yaml:"views"`
}

// FragmentKind categorizes a fragment extracted from a completion.
type FragmentKind string

const (
	FragmentCode       FragmentKind = "code"
	FragmentDocument   FragmentKind = "document"
	FragmentAnnotation FragmentKind = "annotation"
)

// Fragment is a typed piece of content pulled out of one completion,
// with provenance back to the completion and source line.
type Fragment struct {
	// ID is a stable identifier, consistent across re-extractions of
	// unchanged content.
	ID string `json:"id" yaml:"id"`

	// Kind categorizes the fragment: code, document, or annotation.
	Kind FragmentKind `json:"kind" yaml:"kind"`

	// Label is the delimiter label for code fragments (e.g. "js") or the
	// annotation type for annotation fragments. Empty when not applicable.
	Label string `json:"label,omitempty" yaml:"label,omitempty"`

	// Content is the fragment body.
	Content string `json:"content" yaml:"content"`

	// CompletionID identifies the source completion.
	CompletionID string `json:"completion_id" yaml:"completion_id"`

	// Line is the 1-based source line for annotation fragments, 0 otherwise.
	Line int `json:"line,omitempty" yaml:"line,omitempty"`
}

// ExtractionResult holds all fragments extracted from a single completion.
type ExtractionResult struct {
	// CompletionID identifies the source completion.
	CompletionID string `json:"completion_id" yaml:"completion_id"`

	// Fragments contains the extracted fragments in discovery order.
	Fragments []Fragment `json:"fragments" yaml:"fragments"`

	// Error records an extraction failure message. Empty on success.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
}

// StableID generates a deterministic fragment ID from completion ID, label,
// and content. The ID is the first 12 hex characters of SHA-256 over the
// three fields.
func StableID(completionID, label, content string) string {
	h := sha256.New()
	h.Write([]byte(completionID))
	h.Write([]byte(label))
	h.Write([]byte(content))
	return fmt.Sprintf("%x", h.Sum(nil))[:12]
}
