package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	anthropicAPIURL       = "https://api.anthropic.com/v1/messages"
	anthropicAPIVersion   = "2023-06-01"
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	anthropicMaxTokens    = 4096
)

// AnthropicProvider talks to the Anthropic messages endpoint.
type AnthropicProvider struct {
	apiKey  string
	model   string
	url     string
	retries int
	client  *http.Client
}

// NewAnthropicProvider creates an Anthropic provider. An empty url selects the
// public messages endpoint. retries is the number of extra attempts made after
// a 429 or 5xx reply; with zero every request is sent exactly once.
func NewAnthropicProvider(apiKey, model, url string, retries int) *AnthropicProvider {
	if model == "" {
		model = defaultAnthropicModel
	}
	if url == "" {
		url = anthropicAPIURL
	}
	return &AnthropicProvider{
		apiKey:  apiKey,
		model:   model,
		url:     url,
		retries: max(retries, 0),
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

// Name returns the provider identifier.
func (p *AnthropicProvider) Name() string {
	return "anthropic"
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

// Infer sends one messages request. Text blocks of the reply are joined in order.
func (p *AnthropicProvider) Infer(ctx context.Context, system string, messages []Message, opts InferOptions) (*InferResult, error) {
	payload := anthropicRequest{
		Model:       firstNonEmpty(opts.Model, p.model),
		MaxTokens:   anthropicMaxTokens,
		System:      system,
		Messages:    messages,
		Temperature: opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		payload.MaxTokens = opts.MaxTokens
	}

	var err error
	for attempt := 0; attempt <= p.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Second << attempt):
			}
		}

		var result *InferResult
		result, err = p.send(ctx, payload)
		if !isRetryable(err) {
			return result, err
		}
	}
	if p.retries == 0 {
		return nil, err
	}
	return nil, fmt.Errorf("request failed after %d attempts: %w", p.retries+1, err)
}

func (p *AnthropicProvider) send(ctx context.Context, payload anthropicRequest) (*InferResult, error) {
	r, err := postJSON(ctx, p.client, p.url, map[string]string{
		"x-api-key":         p.apiKey,
		"anthropic-version": anthropicAPIVersion,
	}, payload)
	if err != nil {
		return nil, err
	}

	switch {
	case r.status == http.StatusTooManyRequests:
		return nil, &retryableError{msg: "rate limited by Anthropic API"}
	case r.status >= 500:
		return nil, &retryableError{msg: fmt.Sprintf("server error (HTTP %d)", r.status)}
	}

	fields := r.fields()
	if apiErr, ok := fields["error"].(map[string]any); ok {
		kind := stringAt(apiErr, "type")
		if kind == "authentication_error" {
			return nil, errors.New("invalid API key — check your ANTHROPIC_API_KEY environment variable")
		}
		return nil, fmt.Errorf("API error (%s): %s", kind, stringAt(apiErr, "message"))
	}
	if r.status != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d: %s", r.status, snippet(r.body))
	}
	if fields == nil {
		return nil, fmt.Errorf("could not parse API response: %s", snippet(r.body))
	}

	text, ok := joinTextBlocks(fields["content"])
	if !ok {
		return nil, errors.New("API returned empty response")
	}
	return &InferResult{
		Content:      text,
		Model:        firstNonEmpty(stringAt(fields, "model"), payload.Model),
		InputTokens:  intAt(fields, "usage", "input_tokens"),
		OutputTokens: intAt(fields, "usage", "output_tokens"),
	}, nil
}

// joinTextBlocks concatenates a content block list. Blocks typed as anything
// other than text (tool_use, thinking) are skipped. A content value that is not
// a list is normalized on its own.
func joinTextBlocks(content any) (string, bool) {
	switch blocks := content.(type) {
	case nil:
		return "", false
	case []any:
		if len(blocks) == 0 {
			return "", false
		}
		var b strings.Builder
		for _, block := range blocks {
			if kind := stringAt(block, "type"); kind != "" && kind != "text" {
				continue
			}
			b.WriteString(NormalizeResponse(block))
		}
		return b.String(), true
	default:
		return NormalizeResponse(content), true
	}
}

type retryableError struct {
	msg string
}

func (e *retryableError) Error() string {
	return e.msg
}

func isRetryable(err error) bool {
	var re *retryableError
	return errors.As(err, &re)
}
