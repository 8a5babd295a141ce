// Package completion implements the Azure OpenAI chat-completion client.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/tiktoken-go/tokenizer"

	"chatpanel/config"
	"chatpanel/logger"
)

// NoResponse is returned when the service answers with a well-formed body
// that carries no completion. It is delivered as a normal bot turn, not an
// error.
const NoResponse = "No response"

// Completer is the interface consumed by the session controller.
type Completer interface {
	// Complete sends a single-turn chat request and returns the reply text.
	Complete(ctx context.Context, userText string) (string, error)
}

// Client talks to one Azure OpenAI deployment. The settings are snapshotted
// at construction and never re-read.
type Client struct {
	endpoint   string
	apiKey     string
	deployment string
	apiVersion string
	httpClient *http.Client
	codec      tokenizer.Codec // nil when the encoding is unavailable
}

// NewClient builds a client from the given settings snapshot.
func NewClient(cfg config.AzureConfig) *Client {
	codec, err := tokenizer.Get(tokenizer.Cl100kBase)
	if err != nil {
		logger.Warn("tokenizer unavailable, token estimates disabled", "err", err)
		codec = nil
	}
	return &Client{
		endpoint:   cfg.Endpoint,
		apiKey:     cfg.APIKey,
		deployment: cfg.DeploymentName,
		apiVersion: cfg.APIVersion,
		httpClient: &http.Client{},
		codec:      codec,
	}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			// Pointer so an absent field is distinguishable from "".
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Complete issues one POST to the deployment's chat/completions endpoint and
// returns choices[0].message.content. A response without choices degrades to
// NoResponse. There is no retry, no timeout override, and no streaming.
func (c *Client) Complete(ctx context.Context, userText string) (string, error) {
	url := fmt.Sprintf("%sopenai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deployment, c.apiVersion)

	payload, err := json.Marshal(chatRequest{
		Messages: []chatMessage{{Role: "user", Content: userText}},
	})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	logger.Debug("completion request",
		"deployment", c.deployment,
		"apiVersion", c.apiVersion,
		"promptTokens", c.estimateTokens(userText),
	)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("completion API returned %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}

	if len(parsed.Choices) == 0 || parsed.Choices[0].Message.Content == nil {
		logger.Debug("completion response missing content")
		return NoResponse, nil
	}
	return *parsed.Choices[0].Message.Content, nil
}

// estimateTokens returns a cl100k_base token count for logging, or -1 when
// the tokenizer is unavailable.
func (c *Client) estimateTokens(text string) int {
	if c.codec == nil {
		return -1
	}
	n, err := c.codec.Count(text)
	if err != nil {
		return -1
	}
	return n
}
