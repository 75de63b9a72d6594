// Package ai implements the AI-backed analysis and taxonomy adapters.
//
// Three provider backends are supported: an OpenAI-compatible chat
// completions API, the Anthropic messages API and a local Ollama instance.
// All of them reduce to a single text completion primitive.
package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"go.trai.ch/sift/internal/core/domain"
	"go.trai.ch/zerr"
)

const (
	maxRetries    = 3
	retryDelay    = 2 * time.Second
	clientTimeout = 120 * time.Second
)

// Client is a minimal completion client for a single provider.
type Client interface {
	// Complete sends a system and user prompt and returns the raw text reply.
	Complete(ctx context.Context, system, prompt string) (string, error)
	// Name identifies the provider backend.
	Name() string
}

// NewClient builds the provider client selected by the settings.
func NewClient(settings domain.ProviderSettings) (Client, error) {
	switch settings.Name {
	case "openai":
		key, err := resolveAPIKey(settings)
		if err != nil {
			return nil, err
		}
		return newOpenAIClient(key, settings.Model, settings.BaseURL), nil
	case "anthropic":
		key, err := resolveAPIKey(settings)
		if err != nil {
			return nil, err
		}
		return newAnthropicClient(key, settings.Model, settings.BaseURL), nil
	case "ollama":
		return newOllamaClient(settings.Model, settings.BaseURL), nil
	default:
		return nil, zerr.With(domain.ErrUnknownProvider, "provider", settings.Name)
	}
}

func resolveAPIKey(settings domain.ProviderSettings) (string, error) {
	key := os.Getenv(settings.APIKeyEnv)
	if key == "" {
		return "", zerr.With(domain.ErrMissingAPIKey, "env", settings.APIKeyEnv)
	}
	return key, nil
}

// statusError carries the HTTP status of a failed provider request so the
// retry loop can distinguish transient overload from hard failures.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("provider returned status %d: %s", e.code, truncate(e.body, 200))
}

func (e *statusError) retryable() bool {
	return e.code == http.StatusTooManyRequests ||
		e.code == http.StatusServiceUnavailable ||
		e.code == 529
}

// withRetry runs fn up to maxRetries times with linear backoff, retrying
// only transient provider errors.
func withRetry(ctx context.Context, fn func() (string, error)) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(retryDelay * time.Duration(attempt)):
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		var se *statusError
		if !errors.As(err, &se) || !se.retryable() {
			return "", err
		}
	}
	return "", zerr.Wrap(lastErr, fmt.Sprintf("giving up after %d attempts", maxRetries))
}

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: clientTimeout}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func trimBaseURL(baseURL, fallback string) string {
	if baseURL == "" {
		return fallback
	}
	return strings.TrimRight(baseURL, "/")
}
