// Package ai asks an OpenAI-compatible chat-completions endpoint for chore
// assignment suggestions.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	ErrNotConfigured     = errors.New("ai: assignment service not configured")
	ErrMalformedResponse = errors.New("ai: malformed response")
)

const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type payload struct {
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	Model       string    `json:"model,omitempty"`
}

type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// ClientOption configures the Client.
type ClientOption func(*Client)

func WithModel(model string) ClientOption {
	return func(client *Client) { client.model = model }
}

func WithTemperature(temperature float64) ClientOption {
	return func(client *Client) { client.temperature = temperature }
}

func WithMaxTokens(n int) ClientOption {
	return func(client *Client) { client.maxTokens = n }
}

func WithHTTPTimeout(timeout time.Duration) ClientOption {
	return func(client *Client) { client.http.Timeout = timeout }
}

// Client talks to a chat-completions endpoint. The API key is sent both as a
// bearer token and as an api-key header so OpenAI and Azure deployments work
// unchanged.
type Client struct {
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	http        *http.Client
}

func NewClient(endpoint, apiKey string, opts ...ClientOption) *Client {
	client := &Client{
		endpoint:    endpoint,
		apiKey:      apiKey,
		temperature: 0.3,
		maxTokens:   2000,
		http:        &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Configured reports whether the client has somewhere to send requests.
func (client *Client) Configured() bool {
	return client != nil && client.endpoint != ""
}

// Chat sends messages and returns the first choice's content.
func (client *Client) Chat(ctx context.Context, messages []Message) (string, error) {
	if !client.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(payload{
		Messages:    messages,
		Temperature: client.temperature,
		MaxTokens:   client.maxTokens,
		Model:       client.model,
	})
	if err != nil {
		return "", fmt.Errorf("marshalling chat payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, client.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if client.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+client.apiKey)
		req.Header.Set("api-key", client.apiKey)
	}

	resp, err := client.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("sending chat request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading chat response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("chat request returned %s: %s", resp.Status, truncate(string(respBody), 200))
	}

	var result apiResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("%w: decoding envelope: %v", ErrMalformedResponse, err)
	}
	if len(result.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return result.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}
