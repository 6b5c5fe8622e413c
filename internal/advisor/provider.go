package advisor

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Provider sends a single prompt to a language model and returns its raw reply.
type Provider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

// Options configures a provider built by ForProvider. Empty fields take the
// provider's defaults.
type Options struct {
	Model   string
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

const (
	DefaultOllamaModel    = "llama3.1:8b"
	DefaultOllamaURL      = "http://localhost:11434"
	DefaultOpenAIModel    = "gpt-4o-mini"
	DefaultAnthropicModel = "claude-sonnet-4-5-20250929"

	defaultTimeout = 120 * time.Second
)

// ForProvider builds the provider registered under name: "local" (Ollama),
// "openai" or "anthropic".
func ForProvider(name string, opts Options) (Provider, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "local", "ollama":
		return NewOllamaProvider(orDefault(opts.BaseURL, DefaultOllamaURL), orDefault(opts.Model, DefaultOllamaModel), opts.Timeout), nil
	case "openai":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("openai provider requires an API key")
		}
		return NewOpenAIProvider(opts.APIKey, orDefault(opts.Model, DefaultOpenAIModel), opts.BaseURL), nil
	case "anthropic":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("anthropic provider requires an API key")
		}
		return NewAnthropicProvider(opts.APIKey, orDefault(opts.Model, DefaultAnthropicModel), opts.BaseURL, opts.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

// RetryableError indicates a transient failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}

func retryableStatus(code int) bool {
	return code == 429 || code >= 500
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
