package agents

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	DefaultAnthropicURL   = "https://api.anthropic.com/v1/messages"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"
	anthropicVersion      = "2023-06-01"
)

var ErrMissingAPIKey = errors.New("ANTHROPIC_API_KEY is required")

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []anthropicContent `json:"content"`
	Error   *anthropicError    `json:"error,omitempty"`
}

type anthropicContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type anthropicError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// anthropicClient is the text-completion pass-through shared by the agents.
type anthropicClient struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

// ClientOption customizes the completion client.
type ClientOption func(*anthropicClient)

func WithModel(model string) ClientOption {
	return func(c *anthropicClient) {
		if model != "" {
			c.model = model
		}
	}
}

func WithBaseURL(url string) ClientOption {
	return func(c *anthropicClient) { c.url = url }
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *anthropicClient) { c.httpClient = hc }
}

func newAnthropicClient(apiKey string, opts ...ClientOption) (*anthropicClient, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	c := &anthropicClient{
		apiKey:     apiKey,
		model:      DefaultAnthropicModel,
		url:        DefaultAnthropicURL,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *anthropicClient) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	reqBody := anthropicRequest{
		Model:     c.model,
		MaxTokens: maxTokens,
		Messages: []anthropicMessage{
			{
				Role:    "user",
				Content: prompt,
			},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to call Anthropic API: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		slog.Error("Anthropic API error", "status", resp.StatusCode, "body", string(body))
		return "", fmt.Errorf("API request failed with status %d", resp.StatusCode)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if apiResp.Error != nil {
		return "", fmt.Errorf("API error: %s - %s", apiResp.Error.Type, apiResp.Error.Message)
	}

	if len(apiResp.Content) > 0 && apiResp.Content[0].Type == "text" {
		return apiResp.Content[0].Text, nil
	}

	return "", fmt.Errorf("unexpected response format")
}
