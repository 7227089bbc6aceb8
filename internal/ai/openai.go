package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	openaiAPIURL    = "https://api.openai.com/v1/chat/completions"
	defaultGPTModel = "gpt-4o"
)

// OpenAIProvider talks to a chat completions endpoint. Any server speaking the
// same protocol (Azure deployments, vLLM, LM Studio) can be targeted through url.
type OpenAIProvider struct {
	apiKey string
	model  string
	url    string
	client *http.Client
}

// NewOpenAIProvider creates an OpenAI provider. An empty url selects the
// public chat completions endpoint.
func NewOpenAIProvider(apiKey, model, url string) *OpenAIProvider {
	if model == "" {
		model = defaultGPTModel
	}
	if url == "" {
		url = openaiAPIURL
	}
	return &OpenAIProvider{
		apiKey: apiKey,
		model:  model,
		url:    url,
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the provider identifier.
func (p *OpenAIProvider) Name() string {
	return "openai"
}

type openaiRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Infer sends one chat completion request and returns the first choice.
func (p *OpenAIProvider) Infer(ctx context.Context, system string, messages []Message, opts InferOptions) (*InferResult, error) {
	payload := openaiRequest{
		Model:       firstNonEmpty(opts.Model, p.model),
		Messages:    withSystem(system, messages),
		MaxTokens:   opts.MaxTokens,
		Temperature: opts.Temperature,
	}

	r, err := postJSON(ctx, p.client, p.url, map[string]string{"Authorization": "Bearer " + p.apiKey}, payload)
	if err != nil {
		return nil, err
	}

	if msg := stringAt(r.value, "error", "message"); msg != "" {
		return nil, fmt.Errorf("API error: %s", msg)
	}
	if r.status != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", r.status, snippet(r.body))
	}
	fields := r.fields()
	if fields == nil {
		return nil, fmt.Errorf("could not parse response: %s", snippet(r.body))
	}

	// A choice carries message.content for chat replies and text for legacy
	// completions; NormalizeResponse takes the first choice either way.
	choices, _ := fields["choices"].([]any)
	if len(choices) == 0 {
		return nil, errors.New("API returned no choices")
	}
	return &InferResult{
		Content:      NormalizeResponse(choices),
		Model:        firstNonEmpty(stringAt(fields, "model"), payload.Model),
		InputTokens:  intAt(fields, "usage", "prompt_tokens"),
		OutputTokens: intAt(fields, "usage", "completion_tokens"),
	}, nil
}

// withSystem prepends the system prompt as a message, the way chat-style
// endpoints expect it.
func withSystem(system string, messages []Message) []Message {
	if system == "" {
		return messages
	}
	out := make([]Message, 0, len(messages)+1)
	out = append(out, Message{Role: "system", Content: system})
	return append(out, messages...)
}
