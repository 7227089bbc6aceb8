// Package ai provides CLI commands that send workbooks to the model.
package ai

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/klytics/sheetlens/internal/analysis"
)

// NewCommand returns the ai subcommand group.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "Analyze workbooks or ask questions about them",
		Long:  "Commands that flatten a workbook into a preview and send it to the configured model, the same way the HTTP service does.",
	}

	cmd.AddCommand(newAnalyzeCommand())
	cmd.AddCommand(newAskCommand())

	return cmd
}

func readWorkbook(path string) ([]byte, error) {
	if path != "-" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("could not read file %s: %w", path, err)
		}
		return data, nil
	}

	stat, _ := os.Stdin.Stat()
	if (stat.Mode() & os.ModeCharDevice) != 0 {
		return nil, fmt.Errorf("no input provided — pass a workbook path or pipe one to stdin")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("could not read from stdin: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("input is empty")
	}
	return data, nil
}

func writeResult(w io.Writer, jsonFlag bool, field string, res *analysis.Result, extra map[string]any) error {
	if !jsonFlag {
		_, err := fmt.Fprintln(w, res.Text)
		return err
	}

	out := map[string]any{
		field:    res.Text,
		"model":  res.Model,
		"tokens": res.InputTokens + res.OutputTokens,
	}
	for k, v := range extra {
		out[k] = v
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}
