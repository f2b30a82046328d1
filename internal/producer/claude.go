// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package producer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"text/template"

	"github.com/pdiddy/genui-engine/internal/httputil"
)

// genuiPromptTmpl wraps the caller's request in the app-builder contract:
// the model must answer with labeled fenced blocks so the extract stage
// can pull them apart, and flag unmet capabilities with @need markers.
var genuiPromptTmpl = template.Must(template.New("genui").Parse(`You are a UI generation system. Produce the requested interface as source code.

Rules:
- Answer with fenced code blocks only, one per requested language, labeled and in this order: {{.Labels}}.
- Reference section components via their ./sections/ path and view components via their ./views/ path.
- Where an external capability is required that you cannot implement, add an inline comment marker of the form @need:<type>:<description> on its own line.
- Do not include prose outside the fenced blocks.

Request:
{{.Request}}
`))

// claudeAPIURL is the Claude API endpoint. Package-level var for test substitution.
var claudeAPIURL = "https://api.anthropic.com/v1/messages"

// ClaudeBackend calls the Claude API to produce one completion per prompt.
type ClaudeBackend struct {
	APIKey string
	Model  string
	Client *http.Client
}

// claudeRequest is the request body for the Claude Messages API.
type claudeRequest struct {
	Model     string          `json:"model"`
	MaxTokens int             `json:"max_tokens"`
	Messages  []claudeMessage `json:"messages"`
}

// claudeMessage is a single message in the Claude API conversation.
type claudeMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// claudeResponse is the response body from the Claude Messages API.
type claudeResponse struct {
	Content []claudeContent `json:"content"`
}

// claudeContent is a content block in the Claude API response.
type claudeContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Complete calls the Claude API with the given prompt and returns the raw
// completion text. Rate-limited requests are retried by httputil.
func (c *ClaudeBackend) Complete(ctx context.Context, prompt string) (string, error) {
	reqBody := claudeRequest{
		Model:     c.Model,
		MaxTokens: 8192,
		Messages: []claudeMessage{
			{Role: "user", Content: prompt},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, claudeAPIURL, bytes.NewReader(bodyBytes))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("anthropic-version", "2023-06-01")

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return "", fmt.Errorf("calling Claude API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("Claude API returned %d: %s", resp.StatusCode, string(body))
	}

	var cResp claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&cResp); err != nil {
		return "", fmt.Errorf("decoding Claude response: %w", err)
	}

	var sb strings.Builder
	for _, block := range cResp.Content {
		if block.Type != "text" {
			continue
		}
		sb.WriteString(block.Text)
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text content in Claude API response")
	}

	return sb.String(), nil
}

// RenderPrompt executes the genui prompt template with the user request
// and the delimiter labels the extract stage will look for.
func RenderPrompt(request string, labels []string) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Request string
		Labels  string
	}{Request: request, Labels: strings.Join(labels, ", ")}
	if err := genuiPromptTmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
