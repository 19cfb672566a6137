package llm

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"NewsDigest/internal/config"
	"NewsDigest/internal/ports"
)

const anthropicVersion = "2023-06-01"

// AnthropicClient implements ports.TextGenerator over the Messages API.
type AnthropicClient struct {
	model     string
	maxTokens int
	apiKey    string
	client    httpClient
}

var _ ports.TextGenerator = (*AnthropicClient)(nil)

// NewAnthropicClient builds a client from configuration.
func NewAnthropicClient(cfg config.EnrichmentConfig, client *http.Client) *AnthropicClient {
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}
	return &AnthropicClient{
		model:     cfg.Model,
		maxTokens: maxTokens,
		apiKey:    cfg.APIKey,
		client: newHTTPClient("anthropic", cfg.Endpoint, map[string]string{
			"x-api-key":         cfg.APIKey,
			"anthropic-version": anthropicVersion,
		}, client),
	}
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Generate sends the prompt as a single user message and joins the text blocks.
func (c *AnthropicClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" || c.client.endpoint == "" || c.model == "" {
		return "", fmt.Errorf("anthropic client misconfigured")
	}

	payload := map[string]any{
		"model":      c.model,
		"max_tokens": c.maxTokens,
		"messages": []map[string]string{
			{"role": "user", "content": prompt},
		},
	}

	var resp messagesResponse
	if err := c.client.post(ctx, payload, &resp); err != nil {
		return "", err
	}

	var parts []string
	for _, block := range resp.Content {
		if block.Type == "text" {
			parts = append(parts, block.Text)
		}
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("anthropic response has no text")
	}
	return strings.TrimSpace(strings.Join(parts, "\n")), nil
}
