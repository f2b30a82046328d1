// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides HTTP helpers shared across stages.
package httputil

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"time"
)

// RetryBaseDelay controls the base duration for exponential backoff on
// retryable responses. Tests override this to avoid real sleeps.
var RetryBaseDelay = 10 * time.Second

const defaultMaxRetries = 5

// retryable reports whether the response status warrants another attempt.
// 429 is rate limiting; 529 is the Anthropic overloaded status.
func retryable(status int) bool {
	return status == http.StatusTooManyRequests || status == 529
}

// DoWithRetry executes an HTTP request and retries rate-limited or
// overloaded responses with exponential backoff. The delay starts at
// RetryBaseDelay and doubles each attempt; a Retry-After header on the
// response overrides the computed delay for that attempt.
//
// When maxRetries is 0 the default (5) is used. Before sleeping the
// response body is drained and closed. If the context is cancelled
// during a backoff wait the function returns ctx.Err(). After exhausting
// retries the last retryable response is returned so the caller can
// inspect it.
func DoWithRetry(ctx context.Context, client *http.Client, req *http.Request, maxRetries int) (*http.Response, error) {
	if maxRetries <= 0 {
		maxRetries = defaultMaxRetries
	}

	var resp *http.Response
	for attempt := 0; attempt <= maxRetries; attempt++ {
		var err error
		resp, err = client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("executing request: %w", err)
		}
		if !retryable(resp.StatusCode) {
			return resp, nil
		}
		if attempt == maxRetries {
			break
		}

		delay := backoffDelay(resp, attempt)

		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return resp, nil
}

// backoffDelay returns the wait before the next attempt: the server's
// Retry-After value when present, exponential backoff otherwise.
func backoffDelay(resp *http.Response, attempt int) time.Duration {
	if ra := resp.Header.Get("Retry-After"); ra != "" {
		if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
			return time.Duration(secs) * time.Second
		}
	}
	return time.Duration(math.Pow(2, float64(attempt))) * RetryBaseDelay
}
