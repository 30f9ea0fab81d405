package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// SystemPrompt frames every summarization request.
const SystemPrompt = "You are a legal analyst. Summarize the text faithfully and keep every party, amount, date and obligation it states. Do not add facts."

// Client calls an OpenAI-compatible chat completion endpoint.
// It implements summarize.Summarizer.
type Client struct {
	// BaseURL is either the API root (".../v1") or the full completions URL.
	BaseURL string
	APIKey  string
	Model   string

	HTTPClient *http.Client
	Retry      RetryConfig
	Logger     *slog.Logger
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate asks the model to summarize prompt in at most maxLength tokens.
func (c *Client) Generate(ctx context.Context, prompt string, maxLength int) (string, error) {
	return c.Chat(ctx, SystemPrompt, prompt, maxLength)
}

// Chat sends one system+user exchange, retrying transient failures.
func (c *Client) Chat(ctx context.Context, system, user string, maxTokens int) (string, error) {
	if c.BaseURL == "" || c.Model == "" {
		return "", NewFatalError(fmt.Errorf("llm: base URL and model required"))
	}
	body, err := json.Marshal(chatRequest{
		Model:     c.Model,
		Messages:  []chatMessage{{Role: "system", Content: system}, {Role: "user", Content: user}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", NewFatalError(err)
	}

	retry := c.Retry.withDefaults()
	var lastErr error
	for attempt := 1; attempt <= retry.MaxAttempts; attempt++ {
		text, err := c.send(ctx, body)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if IsFatal(err) || ctx.Err() != nil {
			return "", err
		}

		if attempt < retry.MaxAttempts {
			wait := retry.backoff(attempt)
			c.logger().Debug("llm request failed, retrying",
				"attempt", attempt,
				"max_attempts", retry.MaxAttempts,
				"backoff", wait,
				"error", err)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(wait):
			}
		}
	}
	return "", lastErr
}

func (c *Client) send(ctx context.Context, body []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(), bytes.NewReader(body))
	if err != nil {
		return "", NewFatalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", NewTransientError(fmt.Errorf("llm: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", NewTransientError(fmt.Errorf("llm: read response: %w", err))
	}
	if resp.StatusCode != http.StatusOK {
		return "", classifyHTTPError(resp.StatusCode, respBody)
	}

	var payload chatResponse
	if err := json.Unmarshal(respBody, &payload); err != nil {
		return "", NewFatalError(fmt.Errorf("llm: decode response: %w", err))
	}
	if payload.Error != nil {
		return "", NewFatalError(fmt.Errorf("llm error: %s", payload.Error.Message))
	}
	if len(payload.Choices) == 0 {
		return "", NewFatalError(fmt.Errorf("llm: empty response"))
	}
	return payload.Choices[0].Message.Content, nil
}

// classifyHTTPError maps a non-200 status to a transient or fatal error.
func classifyHTTPError(statusCode int, body []byte) error {
	bodyStr := string(body)
	if len(bodyStr) > 200 {
		bodyStr = bodyStr[:200] + "..."
	}
	err := fmt.Errorf("llm: API error (status %d): %s", statusCode, bodyStr)

	switch {
	case statusCode == http.StatusTooManyRequests, statusCode >= 500:
		return NewTransientError(err)
	default:
		// 400, 401, 403 and anything unexpected.
		return NewFatalError(err)
	}
}

func (c *Client) endpoint() string {
	base := strings.TrimRight(c.BaseURL, "/")
	if strings.HasSuffix(base, "/chat/completions") {
		return base
	}
	return base + "/chat/completions"
}

func (c *Client) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return &http.Client{Timeout: 60 * time.Second}
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}
