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

const defaultOllamaBaseURL = "http://localhost:11434"

type ollamaClient struct {
	model   string
	baseURL string
	http    *http.Client
}

type ollamaRequest struct {
	Model   string         `json:"model"`
	System  string         `json:"system,omitempty"`
	Prompt  string         `json:"prompt"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Error    string `json:"error,omitempty"`
}

func newOllamaClient(model, baseURL string) *ollamaClient {
	return &ollamaClient{
		model:   model,
		baseURL: trimBaseURL(baseURL, defaultOllamaBaseURL),
		http:    newHTTPClient(),
	}
}

func (c *ollamaClient) Name() string {
	return "ollama"
}

func (c *ollamaClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	payload := ollamaRequest{
		Model:   c.model,
		System:  system,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]any{"temperature": 0},
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderRequestFailed.Error())
	}

	return withRetry(ctx, func() (string, error) {
		return c.doRequest(ctx, body)
	})
}

func (c *ollamaClient) doRequest(ctx context.Context, body []byte) (string, error) {
	url := c.baseURL + "/api/generate"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderRequestFailed.Error())
	}
	req.Header.Set("Content-Type", "application/json")

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

	var result ollamaResponse
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", zerr.Wrap(err, domain.ErrProviderResponseInvalid.Error())
	}
	if result.Error != "" {
		return "", zerr.With(domain.ErrProviderResponseInvalid, "message", result.Error)
	}

	return strings.TrimSpace(result.Response), nil
}
