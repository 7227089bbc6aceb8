// Package analysis ties the pieces together: workbook bytes are flattened into
// a preview, wrapped in a prompt and sent to the configured model.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/klytics/sheetlens/internal/ai"
	"github.com/klytics/sheetlens/internal/metrics"
	"github.com/klytics/sheetlens/internal/preview"
	"github.com/klytics/sheetlens/internal/prompt"
)

// Endpoint names used for metrics and logs.
const (
	EndpointAnalyze = "analyze"
	EndpointAsk     = "ask"
)

// ErrEmptyQuestion is returned by Ask when the question is blank.
var ErrEmptyQuestion = errors.New("question is empty")

// Options configures a Service.
type Options struct {
	Provider    ai.Provider
	Prompts     prompt.Templates
	AnalyzeRows int
	AskRows     int
	Logger      *zap.SugaredLogger
}

// Result is the model's reply plus bookkeeping for callers that want it.
type Result struct {
	Text         string `json:"text"`
	Model        string `json:"model"`
	InputTokens  int    `json:"inputTokens,omitempty"`
	OutputTokens int    `json:"outputTokens,omitempty"`
}

// Service is safe for concurrent use; it holds no per-request state.
type Service struct {
	provider    ai.Provider
	prompts     prompt.Templates
	analyzeRows int
	askRows     int
	log         *zap.SugaredLogger
}

// New creates a Service. Row caps <= 0 fall back to preview.DefaultRows.
func New(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop().Sugar()
	}
	return &Service{
		provider:    opts.Provider,
		prompts:     opts.Prompts,
		analyzeRows: opts.AnalyzeRows,
		askRows:     opts.AskRows,
		log:         log,
	}
}

// Preview renders workbook bytes with the given row cap, recording per-sheet outcomes.
func (s *Service) Preview(data []byte, rows int) (string, error) {
	b := &preview.Builder{OnSheet: func(sheet string, status preview.Status, err error) {
		metrics.PreviewSheets.WithLabelValues(string(status)).Inc()
		if status == preview.StatusError {
			s.log.Warnw("could not read sheet", "sheet", sheet, "error", err)
		}
	}}
	return b.Build(data, rows)
}

// Analyze asks the model for a free-form analysis of the workbook.
func (s *Service) Analyze(ctx context.Context, data []byte) (*Result, error) {
	text, err := s.Preview(data, s.analyzeRows)
	if err != nil {
		return nil, err
	}
	return s.infer(ctx, EndpointAnalyze, s.prompts.Analyze(text))
}

// Ask asks the model to answer question using only the workbook data.
func (s *Service) Ask(ctx context.Context, data []byte, question string) (*Result, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}

	text, err := s.Preview(data, s.askRows)
	if err != nil {
		return nil, err
	}
	return s.infer(ctx, EndpointAsk, s.prompts.Ask(question, text))
}

func (s *Service) infer(ctx context.Context, endpoint, promptText string) (*Result, error) {
	name := s.provider.Name()
	start := time.Now()

	out, err := s.provider.Infer(ctx, "", []ai.Message{{Role: "user", Content: promptText}}, ai.InferOptions{})
	metrics.ModelDuration.WithLabelValues(name, endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.ModelErrors.WithLabelValues(name, endpoint).Inc()
		s.log.Errorw("model call failed", "provider", name, "endpoint", endpoint, "error", err)
		return nil, fmt.Errorf("%w: %w", ai.ErrModelCall, err)
	}

	s.log.Debugw("model call finished",
		"provider", name,
		"endpoint", endpoint,
		"model", out.Model,
		"prompt_chars", len(promptText),
		"duration", time.Since(start).String(),
	)

	return &Result{
		Text:         out.Content,
		Model:        out.Model,
		InputTokens:  out.InputTokens,
		OutputTokens: out.OutputTokens,
	}, nil
}
