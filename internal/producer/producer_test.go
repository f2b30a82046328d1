// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package producer

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/genui-engine/pkg/types"
)

func TestMain(m *testing.M) {
	backoffBase = time.Millisecond
	os.Exit(m.Run())
}

// mockBackend fails the first failures calls, then succeeds.
type mockBackend struct {
	failures int
	calls    int
	text     string
}

func (m *mockBackend) Complete(_ context.Context, _ string) (string, error) {
	m.calls++
	if m.calls <= m.failures {
		return "", errors.New("transient failure")
	}
	return m.text, nil
}

func TestProduce(t *testing.T) {
	backend := &mockBackend{text: "```js\nok();\n```"}

	c, err := Produce(context.Background(), backend, "req-001", "make a page", types.ProducerConfig{})
	require.NoError(t, err)
	assert.Equal(t, "req-001", c.ID)
	assert.Equal(t, "```js\nok();\n```", c.Text)
	assert.Equal(t, 1, backend.calls)
}

func TestProduceRetriesTransientFailures(t *testing.T) {
	backend := &mockBackend{failures: 2, text: "recovered"}

	c, err := Produce(context.Background(), backend, "req-002", "prompt", types.ProducerConfig{})
	require.NoError(t, err)
	assert.Equal(t, "recovered", c.Text)
	assert.Equal(t, 3, backend.calls)
}

func TestProduceExhaustsRetries(t *testing.T) {
	backend := &mockBackend{failures: 100}

	cfg := types.ProducerConfig{AIConfig: types.AIConfig{MaxRetries: 2}}
	_, err := Produce(context.Background(), backend, "req-003", "prompt", cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "req-003")
	// Initial attempt plus two retries.
	assert.Equal(t, 3, backend.calls)
}

func TestProduceContextCancellation(t *testing.T) {
	backend := &mockBackend{failures: 100}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Produce(ctx, backend, "req-004", "prompt", types.ProducerConfig{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRenderPrompt(t *testing.T) {
	prompt, err := RenderPrompt("a landing page for a bakery", []string{"js", "css"})
	require.NoError(t, err)
	assert.Contains(t, prompt, "a landing page for a bakery")
	assert.Contains(t, prompt, "js, css")
	assert.Contains(t, prompt, "@need:")
}

func TestClaudeBackendComplete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"content":[{"type":"text","text":"hello "},{"type":"tool_use"},{"type":"text","text":"world"}]}`))
	}))
	defer server.Close()

	oldURL := claudeAPIURL
	claudeAPIURL = server.URL
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{APIKey: "test-key", Model: "test-model", Client: server.Client()}
	text, err := backend.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestClaudeBackendErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer server.Close()

	oldURL := claudeAPIURL
	claudeAPIURL = server.URL
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{Client: server.Client()}
	_, err := backend.Complete(context.Background(), "prompt")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "400"))
}

func TestClaudeBackendNoTextContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"content":[{"type":"tool_use"}]}`))
	}))
	defer server.Close()

	oldURL := claudeAPIURL
	claudeAPIURL = server.URL
	defer func() { claudeAPIURL = oldURL }()

	backend := &ClaudeBackend{Client: server.Client()}
	_, err := backend.Complete(context.Background(), "prompt")
	assert.Error(t, err)
}
