package llm

import (
	"context"
	"strings"
	"swipewrite/internal/domain"
)

const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"

	DefaultOpenAIModel    = "gpt-4o"
	DefaultAnthropicModel = "claude-sonnet-4-5"
	DefaultGeminiModel    = "gemini-2.5-flash"

	// anthropicMaxTokens is used when the caller sets no cap, the Messages API requires one.
	anthropicMaxTokens int64 = 4096
)

// Request is a single system + user exchange.
type Request struct {
	System string
	Prompt string
	// Image is optional and sent inline next to Prompt.
	Image *domain.Image
	// MaxOutputTokens caps the answer length when positive.
	MaxOutputTokens int64
}

// Provider is the remote chat-completion capability.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

type Config struct {
	Provider        string
	Model           string
	BaseURL         string
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GoogleAPIKey    string
}

func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "", ProviderOpenAI:
		if cfg.OpenAIAPIKey == "" {
			return nil, ErrMissingAPIKey{Provider: ProviderOpenAI}
		}

		return NewOpenAIProvider(OpenAIConfig{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   defaultIfEmpty(cfg.Model, DefaultOpenAIModel),
			BaseURL: cfg.BaseURL,
		}), nil
	case ProviderAnthropic:
		if cfg.AnthropicAPIKey == "" {
			return nil, ErrMissingAPIKey{Provider: ProviderAnthropic}
		}

		return NewAnthropicProvider(AnthropicConfig{
			APIKey:  cfg.AnthropicAPIKey,
			Model:   defaultIfEmpty(cfg.Model, DefaultAnthropicModel),
			BaseURL: cfg.BaseURL,
		}), nil
	case ProviderGemini:
		if cfg.GoogleAPIKey == "" {
			return nil, ErrMissingAPIKey{Provider: ProviderGemini}
		}

		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:  cfg.GoogleAPIKey,
			Model:   defaultIfEmpty(cfg.Model, DefaultGeminiModel),
			BaseURL: cfg.BaseURL,
		})
	default:
		return nil, ErrUnsupportedProvider{Provider: cfg.Provider}
	}
}

func defaultIfEmpty(value string, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
