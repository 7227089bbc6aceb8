package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	defaultOllamaModel = "gemma3:4b"
	defaultOllamaHost  = "http://localhost:11434"
)

// OllamaHost resolves the server address: the configured host, then
// OLLAMA_HOST, then the local default.
func OllamaHost(configured string) string {
	return firstNonEmpty(configured, os.Getenv("OLLAMA_HOST"), defaultOllamaHost)
}

// OllamaProvider implements the Provider interface for local Ollama models.
type OllamaProvider struct {
	host   string
	model  string
	client *http.Client
}

// NewOllamaProvider creates a new Ollama provider with the given host and model.
func NewOllamaProvider(host, model string) *OllamaProvider {
	if model == "" {
		model = defaultOllamaModel
	}
	return &OllamaProvider{
		host:   strings.TrimRight(host, "/"),
		model:  model,
		client: &http.Client{Timeout: 300 * time.Second},
	}
}

// Name returns the provider identifier.
func (p *OllamaProvider) Name() string {
	return "ollama"
}

type ollamaRequest struct {
	Model    string         `json:"model"`
	Messages []Message      `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

// Infer sends a prompt to Ollama and returns the complete response.
// The reply body is decoded loosely and reduced with NormalizeResponse, since
// its shape differs between Ollama versions and compatible servers.
func (p *OllamaProvider) Infer(ctx context.Context, system string, messages []Message, opts InferOptions) (*InferResult, error) {
	payload := ollamaRequest{
		Model:    firstNonEmpty(opts.Model, p.model),
		Messages: withSystem(system, messages),
	}
	if opts.Temperature > 0 || opts.MaxTokens > 0 {
		payload.Options = map[string]any{}
		if opts.Temperature > 0 {
			payload.Options["temperature"] = opts.Temperature
		}
		if opts.MaxTokens > 0 {
			payload.Options["num_predict"] = opts.MaxTokens
		}
	}

	r, err := postJSON(ctx, p.client, p.host+"/api/chat", nil, payload)
	if errors.Is(err, errUnreachable) {
		return nil, fmt.Errorf("could not connect to Ollama at %s — is Ollama running? Start it with 'ollama serve'", p.host)
	}
	if err != nil {
		return nil, err
	}
	if r.status != http.StatusOK {
		return nil, fmt.Errorf("Ollama returned status %d: %s", r.status, snippet(r.body))
	}
	if r.value == nil {
		return nil, fmt.Errorf("could not parse response: %s", snippet(r.body))
	}

	return &InferResult{
		Content:      NormalizeResponse(r.value),
		Model:        firstNonEmpty(stringAt(r.value, "model"), payload.Model),
		InputTokens:  intAt(r.value, "prompt_eval_count"),
		OutputTokens: intAt(r.value, "eval_count"),
	}, nil
}
