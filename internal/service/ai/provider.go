// Package ai wraps the LLM providers used for product comparison.
package ai

import (
	"context"
	"errors"
	"net/http"
)

const (
	ProviderOpenAI     = "openai"
	ProviderAnthropic  = "anthropic"
	ProviderCompatible = "compatible"
)

const (
	EndpointChat      = "chat/completions"
	EndpointResponses = "responses"
)

const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

var (
	ErrMissingAPIKey   = errors.New("api key is required")
	ErrMissingModel    = errors.New("model is required")
	ErrInvalidProvider = errors.New("invalid provider")
	ErrMissingBaseURL  = errors.New("base url is required for compatible provider")

	ErrProviderAuth        = errors.New("provider authentication failed")
	ErrProviderRateLimited = errors.New("provider rate limit exceeded")
	ErrEmptyResponse       = errors.New("provider returned an empty response")
)

// Provider is a chat-style completion backend.
type Provider interface {
	Name() string
	// Complete sends one system prompt and one user message and returns the reply text.
	Complete(ctx context.Context, systemPrompt, content string) (string, error)
}

type Config struct {
	Provider    string
	APIKey      string
	BaseURL     string
	Model       string
	Endpoint    string
	Temperature float64
	MaxTokens   int64
	MaxRetries  int
}

// NewProvider validates cfg and builds the matching provider.
func NewProvider(cfg Config) (Provider, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cfg.Model == "" {
		return nil, ErrMissingModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = DefaultTemperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = DefaultMaxTokens
	}

	switch cfg.Provider {
	case ProviderOpenAI, "":
		return NewOpenAIProvider(cfg, ProviderOpenAI)
	case ProviderCompatible:
		if cfg.BaseURL == "" {
			return nil, ErrMissingBaseURL
		}
		return NewOpenAIProvider(cfg, ProviderCompatible)
	case ProviderAnthropic:
		return NewAnthropicProvider(cfg)
	default:
		return nil, ErrInvalidProvider
	}
}

// classifyStatus maps an API status code to the provider sentinel errors.
func classifyStatus(status int) error {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return ErrProviderAuth
	case http.StatusTooManyRequests:
		return ErrProviderRateLimited
	default:
		return nil
	}
}
