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

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type openaiClient struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func newOpenAIClient(apiKey, model, baseURL string) *openaiClient {
	return &openaiClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: trimBaseURL(baseURL, defaultOpenAIBaseURL),
		http:    newHTTPClient(),
	}
}

func (c *openaiClient) Name() string {
	return "openai"
}

func (c *openaiClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	payload := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: prompt},
		},
		MaxTokens:   4096,
		Temperature: 0,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderRequestFailed.Error())
	}

	return withRetry(ctx, func() (string, error) {
		return c.doRequest(ctx, body)
	})
}

func (c *openaiClient) doRequest(ctx context.Context, body []byte) (string, error) {
	url := c.baseURL + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderRequestFailed.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

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

	var result chatResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderResponseInvalid.Error())
	}
	if result.Error != nil {
		return "", zerr.With(domain.ErrProviderResponseInvalid, "message", result.Error.Message)
	}
	if len(result.Choices) == 0 {
		return "", zerr.With(domain.ErrProviderResponseInvalid, "reason", "no choices")
	}

	return strings.TrimSpace(result.Choices[0].Message.Content), nil
}
