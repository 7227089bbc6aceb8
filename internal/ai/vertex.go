package ai

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"google.golang.org/api/option"
)

const (
	defaultVertexModel  = "gemini-1.5-pro"
	defaultVertexRegion = "us-central1"
)

// VertexProvider implements the Provider interface for Gemini models on Vertex AI.
type VertexProvider struct {
	client *genai.Client
	model  string
}

// NewVertexProvider creates a Vertex AI client. Credentials come from
// credentialsFile when set, otherwise from Application Default Credentials.
func NewVertexProvider(ctx context.Context, projectID, region, model, credentialsFile string) (*VertexProvider, error) {
	if projectID == "" {
		return nil, fmt.Errorf("vertex provider needs a project — set vertex.project or SHEETLENS_VERTEX_PROJECT")
	}
	if region == "" {
		region = defaultVertexRegion
	}
	if model == "" {
		model = defaultVertexModel
	}

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := genai.NewClient(ctx, projectID, region, opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create Vertex AI client: %w", err)
	}

	return &VertexProvider{client: client, model: model}, nil
}

// Name returns the provider identifier.
func (p *VertexProvider) Name() string {
	return "vertex"
}

// Infer sends the messages as text parts of a single request.
func (p *VertexProvider) Infer(ctx context.Context, system string, messages []Message, opts InferOptions) (*InferResult, error) {
	name := p.model
	if opts.Model != "" {
		name = opts.Model
	}

	model := p.client.GenerativeModel(name)
	if system != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system)},
		}
	}
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	if opts.Temperature > 0 {
		model.SetTemperature(float32(opts.Temperature))
	}

	parts := make([]genai.Part, 0, len(messages))
	for _, m := range messages {
		parts = append(parts, genai.Text(m.Content))
	}

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return nil, fmt.Errorf("could not generate content: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, fmt.Errorf("Vertex AI returned an empty response")
	}

	result := &InferResult{Content: text, Model: name}
	if resp.UsageMetadata != nil {
		result.InputTokens = int(resp.UsageMetadata.PromptTokenCount)
		result.OutputTokens = int(resp.UsageMetadata.CandidatesTokenCount)
	}
	return result, nil
}

// Close releases the underlying client.
func (p *VertexProvider) Close() error {
	if p.client != nil {
		return p.client.Close()
	}
	return nil
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return b.String()
}
