// Package extract pulls typed fragments out of free-form generated text.
// It covers fenced code blocks (single and multi-delimiter) and inline
// @need annotations. All operations are best-effort: malformed input is
// logged and reported through sentinel errors, never panics.
package extract

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// fence is the block delimiter expected in generated text.
const fence = "```"

// Sentinel errors distinguishing the extraction failure classes. Callers
// match with errors.Is; every failure path also emits a diagnostic on the
// extractor's logger.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoOpenFence  = errors.New("no opening fence found")
	ErrNoCloseFence = errors.New("no closing fence found")
	ErrEmptyBlock   = errors.New("fenced block is empty")
	ErrNoBlocks     = errors.New("no labeled blocks matched")
)

// Extractor performs fenced-block and annotation extraction. It holds no
// state beyond the diagnostic logger; all methods are safe for concurrent
// use.
type Extractor struct {
	log *zap.Logger
}

// New returns an Extractor that writes diagnostics to log. A nil log
// disables diagnostics.
func New(log *zap.Logger) *Extractor {
	if log == nil {
		log = zap.NewNop()
	}
	return &Extractor{log: log}
}

// Backticks returns the trimmed content of the first well-formed fenced
// block in text. The opening fence may carry a language tag; it is
// discarded without validation. The open and close fences must sit on two
// distinct lines and the content between them must be non-empty after
// trimming.
func (e *Extractor) Backticks(text string) (string, error) {
	if text == "" {
		e.log.Warn("backticks: empty input")
		return "", fmt.Errorf("backticks: %w", ErrInvalidInput)
	}

	lines := strings.Split(text, "\n")

	open := -1
	for i, line := range lines {
		if strings.Contains(line, fence) {
			open = i
			break
		}
	}
	if open == -1 {
		e.log.Warn("backticks: no opening fence in completion")
		return "", fmt.Errorf("backticks: %w", ErrNoOpenFence)
	}

	closing := -1
	for i := len(lines) - 1; i > open; i-- {
		if strings.Contains(lines[i], fence) {
			closing = i
			break
		}
	}
	if closing == -1 {
		// A single fenced line resolves both markers to the same index.
		e.log.Warn("backticks: no closing fence after opening fence",
			zap.Int("open", open))
		return "", fmt.Errorf("backticks: %w", ErrNoCloseFence)
	}

	body := strings.TrimSpace(strings.Join(lines[open+1:closing], "\n"))
	if body == "" {
		e.log.Warn("backticks: fenced block has no content")
		return "", fmt.Errorf("backticks: %w", ErrEmptyBlock)
	}

	return body, nil
}

// MultiBackticks scans text for labeled fenced blocks in the caller's
// label order and returns a label-to-body mapping. Labels are expected to
// appear in the same order in the text: the scan cursor only moves
// forward, so an out-of-order block is not found. A missed label is
// logged and skipped rather than aborting the scan. Bodies are raw, not
// trimmed. An empty mapping is an overall failure.
func (e *Extractor) MultiBackticks(text string, labels []string) (map[string]string, error) {
	if text == "" || len(labels) == 0 {
		e.log.Warn("multi backticks: empty input or no labels",
			zap.Int("labels", len(labels)))
		return nil, fmt.Errorf("multi backticks: %w", ErrInvalidInput)
	}

	lines := strings.Split(text, "\n")
	blocks := make(map[string]string)
	cursor := 0

	for _, label := range labels {
		open := -1
		for i := cursor; i < len(lines); i++ {
			if strings.Contains(lines[i], fence+label) {
				open = i
				break
			}
		}
		if open == -1 {
			e.log.Warn("multi backticks: label not found",
				zap.String("label", label), zap.Int("cursor", cursor))
			continue
		}

		closing := -1
		for i := open + 1; i < len(lines); i++ {
			if strings.Contains(lines[i], fence) {
				closing = i
				break
			}
		}
		if closing == -1 {
			e.log.Warn("multi backticks: unterminated block",
				zap.String("label", label), zap.Int("open", open))
			continue
		}

		blocks[label] = strings.Join(lines[open+1:closing], "\n")
		cursor = closing + 1
	}

	if len(blocks) == 0 {
		e.log.Warn("multi backticks: no labels matched", zap.Strings("labels", labels))
		return nil, fmt.Errorf("multi backticks: %w", ErrNoBlocks)
	}

	return blocks, nil
}
