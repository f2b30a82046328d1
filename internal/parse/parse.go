// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse decodes structured-document payloads carried inside
// generated text. It wraps the YAML decoder behind the same best-effort
// contract as the extract package: decode problems are logged and
// returned as errors, never propagated as panics.
package parse

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/genui-engine/pkg/types"
)

// Sentinel errors for the parse failure classes.
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNullDocument = errors.New("document decoded to null")
)

// Parser decodes one structured document per call. Safe for concurrent use.
type Parser struct {
	log *zap.Logger
}

// New returns a Parser that writes diagnostics to log. A nil log disables
// diagnostics.
func New(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// YAML decodes the completion's text as a single YAML document and
// returns the value tree (scalars, sequences, string-keyed mappings). A
// missing payload, a decode error, or a document that decodes to null are
// all parse failures; no partial recovery is attempted.
func (p *Parser) YAML(c types.Completion) (any, error) {
	if c.Text == "" {
		p.log.Warn("yaml: empty completion text", zap.String("completion", c.ID))
		return nil, fmt.Errorf("yaml: %w", ErrInvalidInput)
	}

	var doc any
	if err := yaml.Unmarshal([]byte(c.Text), &doc); err != nil {
		p.log.Warn("yaml: decode failed",
			zap.String("completion", c.ID), zap.Error(err))
		return nil, fmt.Errorf("yaml: decoding document: %w", err)
	}

	if doc == nil {
		p.log.Warn("yaml: document decoded to null", zap.String("completion", c.ID))
		return nil, fmt.Errorf("yaml: %w", ErrNullDocument)
	}

	return doc, nil
}
