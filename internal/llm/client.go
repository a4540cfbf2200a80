// Package llm talks to an OpenAI-compatible chat completions API,
// including function (tool) calling.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultTimeout = 120 * time.Second
	maxRetries     = 3
	initialBackoff = 500 * time.Millisecond
)

// Client communicates with an OpenAI-compatible chat completions endpoint.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a Client with the given API key against the default base URL.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseURL: defaultBaseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// NewClientWithBaseURL creates a client pointing at a custom base URL
// (self-hosted gateways, tests).
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// Chat sends the conversation plus the declared tool catalog and returns the
// single assistant message the model produced. Temperature is pinned to 0.
// Rate-limit responses (429) are retried with exponential backoff; every
// other failure is returned as-is.
func (c *Client) Chat(ctx context.Context, model string, messages []Message, tools []Tool) (Message, error) {
	body, err := json.Marshal(chatRequest{
		Model:       model,
		Messages:    messages,
		Tools:       tools,
		Temperature: 0,
		Stream:      false,
	})
	if err != nil {
		return Message{}, fmt.Errorf("marshaling chat request: %w", err)
	}

	var lastErr error
	for attempt := range maxRetries {
		msg, err := c.doChat(ctx, body)
		if err == nil {
			return msg, nil
		}

		if !isRateLimit(err) {
			return Message{}, err
		}

		lastErr = err
		if attempt < maxRetries-1 {
			backoff := time.Duration(float64(initialBackoff) * math.Pow(2, float64(attempt)))
			select {
			case <-ctx.Done():
				return Message{}, ctx.Err()
			case <-time.After(backoff):
			}
		}
	}

	return Message{}, fmt.Errorf("rate limited after %d retries: %w", maxRetries, lastErr)
}

// rateLimitError is returned on HTTP 429.
type rateLimitError struct {
	status int
}

func (e *rateLimitError) Error() string {
	return fmt.Sprintf("rate limited (HTTP %d)", e.status)
}

func isRateLimit(err error) bool {
	_, ok := err.(*rateLimitError)
	return ok
}

func (c *Client) doChat(ctx context.Context, body []byte) (Message, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Message{}, fmt.Errorf("creating chat request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return Message{}, fmt.Errorf("chat request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return Message{}, &rateLimitError{status: resp.StatusCode}
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Message{}, fmt.Errorf("reading chat response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope struct {
			Error *apiError `json:"error"`
		}
		if jsonErr := json.Unmarshal(raw, &envelope); jsonErr == nil && envelope.Error != nil {
			return Message{}, fmt.Errorf("chat: %s (HTTP %d)", envelope.Error.Message, resp.StatusCode)
		}
		return Message{}, fmt.Errorf("chat: unexpected status %d", resp.StatusCode)
	}

	var result chatResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return Message{}, fmt.Errorf("decoding chat response: %w", err)
	}
	if result.Error != nil {
		return Message{}, fmt.Errorf("chat: %s", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return Message{}, fmt.Errorf("chat: response has no choices")
	}

	msg := result.Choices[0].Message
	if msg.Role == "" {
		msg.Role = RoleAssistant
	}
	return msg, nil
}
