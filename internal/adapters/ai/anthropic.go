package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
)

type anthropicClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

type anthropicRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	System    string        `json:"system,omitempty"`
	Messages  []chatMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newAnthropicClient(apiKey, model, baseURL string) *anthropicClient {
	return &anthropicClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: trimBaseURL(baseURL, defaultAnthropicBaseURL),
		http:    newHTTPClient(),
	}
}

func (c *anthropicClient) Name() string {
	return "anthropic"
}

func (c *anthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	payload := anthropicRequest{
		Model:     c.model,
		MaxTokens: 4096,
		System:    system,
		Messages: []chatMessage{
			{Role: "user", Content: prompt},
		},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderRequestFailed.Error())
	}

	return withRetry(ctx, func() (string, error) {
		return c.doRequest(ctx, body)
	})
}

func (c *anthropicClient) doRequest(ctx context.Context, body []byte) (string, error) {
	url := c.baseURL + "/v1/messages"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderRequestFailed.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderRequestFailed.Error())
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderResponseInvalid.Error())
	}

	if resp.StatusCode != http.StatusOK {
		return "", &statusError{code: resp.StatusCode, body: string(respBody)}
	}

	var result anthropicResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderResponseInvalid.Error())
	}
	if result.Error != nil {
		return "", zerr.With(domain.ErrProviderResponseInvalid, "message", result.Error.Message)
	}

	var text strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", zerr.With(domain.ErrProviderResponseInvalid, "reason", "no text content")
	}

	return strings.TrimSpace(text.String()), nil
}
