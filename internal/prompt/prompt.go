// Package prompt assembles the text sent to the model from fixed instructions,
// an optional user question and a workbook preview.
package prompt

import "strings"

const (
	DefaultAnalyzeInstruction = "You are a data analyst AI. Analyze this Excel data and provide a summary, including trends, insights, or anomalies:"
	DefaultAskInstruction     = "You are a careful analyst. Answer the question using only the data provided below. If the data does not contain the answer, say so."
)

// Templates holds the instruction text for each prompt kind. Empty fields
// fall back to the defaults.
type Templates struct {
	Analyze string `mapstructure:"analyze" yaml:"analyze" json:"analyze"`
	Ask     string `mapstructure:"ask" yaml:"ask" json:"ask"`
}

// Analyze builds the prompt for a free-form analysis.
func (t Templates) Analyze(preview string) string {
	return instruction(t.Analyze, DefaultAnalyzeInstruction) + "\n\n" + preview
}

// Ask builds the prompt for a question answered strictly from the data.
func (t Templates) Ask(question, preview string) string {
	var b strings.Builder
	b.WriteString(instruction(t.Ask, DefaultAskInstruction))
	b.WriteString("\n\nQuestion: ")
	b.WriteString(question)
	b.WriteString("\n\nData:\n")
	b.WriteString(preview)
	return b.String()
}

func instruction(custom, fallback string) string {
	if s := strings.TrimSpace(custom); s != "" {
		return s
	}
	return fallback
}
