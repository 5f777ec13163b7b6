package llm

import (
	"errors"
	"fmt"

	"github.com/Harshitk-cp/storybible/internal/domain"
)

// ErrImagesUnsupported is returned by GenerateImage when no image model is
// configured for the provider.
var ErrImagesUnsupported = errors.New("image generation not configured for this provider")

// Provider constants
const (
	ProviderGroq      = "groq"
	ProviderOpenAI    = "openai"
	ProviderCerebras  = "cerebras"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderMock      = "mock"
)

// providerDefaults holds the OpenAI-compatible endpoint and default models
// of each hosted provider. An empty image model disables GenerateImage.
var providerDefaults = map[string]struct {
	baseURL    string
	chatModel  string
	imageModel string
	keyEnv     string
}{
	ProviderGroq:      {"https://api.groq.com/openai/v1", "llama-3.3-70b-versatile", "", "GROQ_API_KEY"},
	ProviderOpenAI:    {"https://api.openai.com/v1", "gpt-4o-mini", "dall-e-3", "OPENAI_API_KEY"},
	ProviderCerebras:  {"https://api.cerebras.ai/v1", "llama-3.3-70b", "", "CEREBRAS_API_KEY"},
	ProviderGemini:    {"https://generativelanguage.googleapis.com/v1beta/openai", "gemini-2.0-flash", "", "GEMINI_API_KEY"},
	ProviderAnthropic: {"https://api.anthropic.com/v1", "claude-3-5-haiku-latest", "", "ANTHROPIC_API_KEY"},
}

type Config struct {
	Provider   string
	APIKey     string
	BaseURL    string
	Model      string
	ImageModel string
}

// KeyEnv returns the environment variable holding the API key for provider.
func KeyEnv(provider string) string {
	return providerDefaults[provider].keyEnv
}

// NewClient creates an LLM client based on the provider name.
// Returns an error if the provider is unknown or the API key is empty (except for mock).
func NewClient(cfg Config) (domain.LLMClient, error) {
	if cfg.Provider == ProviderMock {
		return NewMockClient(), nil
	}

	defaults, ok := providerDefaults[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unknown LLM provider: %s (valid options: groq, openai, cerebras, gemini, anthropic, mock)", cfg.Provider)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%s is required for %s provider", defaults.keyEnv, cfg.Provider)
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaults.baseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaults.chatModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = defaults.imageModel
	}
	return NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.ImageModel), nil
}
