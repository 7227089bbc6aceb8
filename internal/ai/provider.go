// Package ai provides a unified interface to multiple AI inference providers.
package ai

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrModelCall marks failures talking to the model (network, auth, timeouts,
// malformed replies).
var ErrModelCall = errors.New("model call failed")

// Message represents a single message in a conversation with an AI model.
type Message struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// InferOptions configures a single inference call.
type InferOptions struct {
	Model       string  `json:"model,omitempty"`
	MaxTokens   int     `json:"maxTokens,omitempty"`
	Temperature float64 `json:"temperature,omitempty"`
}

// InferResult holds the response from an inference call.
type InferResult struct {
	Content      string `json:"content"`
	Model        string `json:"model"`
	InputTokens  int    `json:"inputTokens,omitempty"`
	OutputTokens int    `json:"outputTokens,omitempty"`
}

// Provider defines the interface that all AI backends must implement.
type Provider interface {
	// Infer sends a prompt and returns the complete response.
	Infer(ctx context.Context, system string, messages []Message, opts InferOptions) (*InferResult, error)

	// Name returns the provider identifier.
	Name() string
}

// Settings selects and configures a provider. It is built once from the
// application config and not modified afterwards.
type Settings struct {
	Provider string
	Model    string

	AnthropicKey     string
	AnthropicURL     string
	AnthropicRetries int
	OpenAIKey        string
	OpenAIURL        string
	OllamaHost       string

	VertexProject         string
	VertexRegion          string
	VertexCredentialsFile string
}

// NewProvider creates a provider instance from settings. API keys and the
// Ollama host fall back to the conventional environment variables when not
// configured. Empty endpoint URLs select the vendors' public endpoints.
func NewProvider(ctx context.Context, s Settings) (Provider, error) {
	switch strings.ToLower(s.Provider) {
	case "anthropic":
		apiKey := firstNonEmpty(s.AnthropicKey, os.Getenv("ANTHROPIC_API_KEY"))
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable is not set — get your API key at https://console.anthropic.com/settings/keys")
		}
		return NewAnthropicProvider(apiKey, s.Model, s.AnthropicURL, s.AnthropicRetries), nil
	case "openai":
		apiKey := firstNonEmpty(s.OpenAIKey, os.Getenv("OPENAI_API_KEY"))
		if apiKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY environment variable is not set")
		}
		return NewOpenAIProvider(apiKey, s.Model, s.OpenAIURL), nil
	case "ollama", "":
		return NewOllamaProvider(OllamaHost(s.OllamaHost), s.Model), nil
	case "vertex":
		return NewVertexProvider(ctx, s.VertexProject, s.VertexRegion, s.Model, s.VertexCredentialsFile)
	default:
		return nil, fmt.Errorf("unknown AI provider %q — supported providers: ollama, openai, anthropic, vertex", s.Provider)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
