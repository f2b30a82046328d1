// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package producer obtains completions from the generative backend. It is
// the upstream counterpart of the extract/parse/edit stages: everything it
// returns is free-form text to be post-processed, never trusted structure.
package producer

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pdiddy/genui-engine/pkg/types"
)

// Backend abstracts the Generative AI API so tests can supply a mock.
// Each implementation handles a single prompt and returns the raw
// completion text.
type Backend interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// Produce sends one prompt through the backend with exponential-backoff
// retries and wraps the raw response as a Completion under the given ID.
func Produce(ctx context.Context, backend Backend, id, prompt string, cfg types.ProducerConfig) (types.Completion, error) {
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	text, err := callWithRetry(ctx, backend, prompt, maxRetries)
	if err != nil {
		return types.Completion{}, fmt.Errorf("producing completion %s: %w", id, err)
	}

	return types.Completion{ID: id, Text: text}, nil
}

// callWithRetry calls the backend with exponential backoff.
func callWithRetry(ctx context.Context, backend Backend, prompt string, maxRetries int) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		text, err := backend.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err
	}
	return "", fmt.Errorf("after %d retries: %w", maxRetries, lastErr)
}
