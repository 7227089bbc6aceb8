package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/klytics/sheetlens/internal/ai"
)

// Issue is a single finding from Validate.
type Issue struct {
	Key      string `json:"key"`
	Severity string `json:"severity"` // "error", "warning" or "info"
	Message  string `json:"message"`
	Fix      string `json:"fix,omitempty"`
}

// Validate checks config values and returns a list of issues.
func Validate(cfg *Config) []Issue {
	var issues []Issue

	switch strings.ToLower(cfg.Provider) {
	case "anthropic":
		if cfg.APIKeys.Anthropic == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
			issues = append(issues, Issue{
				Key:      "provider",
				Severity: "error",
				Message:  fmt.Sprintf("provider is %q but ANTHROPIC_API_KEY is not set", cfg.Provider),
				Fix:      "export ANTHROPIC_API_KEY=sk-ant-...\nOr: set api_keys.anthropic in " + ConfigPath(),
			})
		} else {
			issues = append(issues, Issue{Key: "provider", Severity: "info", Message: "Anthropic API key configured"})
		}
	case "openai":
		if cfg.APIKeys.OpenAI == "" && os.Getenv("OPENAI_API_KEY") == "" {
			issues = append(issues, Issue{
				Key:      "provider",
				Severity: "error",
				Message:  fmt.Sprintf("provider is %q but OPENAI_API_KEY is not set", cfg.Provider),
				Fix:      "export OPENAI_API_KEY=sk-...",
			})
		}
	case "ollama", "":
		issues = append(issues, Issue{
			Key:      "provider",
			Severity: "info",
			Message:  fmt.Sprintf("Ollama at %s (no API key needed)", ai.OllamaHost(cfg.Ollama.Host)),
		})
	case "vertex":
		if cfg.Vertex.Project == "" {
			issues = append(issues, Issue{
				Key:      "vertex.project",
				Severity: "error",
				Message:  "provider is \"vertex\" but no Google Cloud project is set",
				Fix:      "export SHEETLENS_VERTEX_PROJECT=my-project",
			})
		}
		if cfg.Vertex.CredentialsFile == "" {
			issues = append(issues, Issue{
				Key:      "vertex.credentials_file",
				Severity: "info",
				Message:  "using Application Default Credentials",
			})
		}
	default:
		issues = append(issues, Issue{
			Key:      "provider",
			Severity: "error",
			Message:  fmt.Sprintf("unknown provider %q", cfg.Provider),
			Fix:      "use one of: ollama, openai, anthropic, vertex",
		})
	}

	rowCaps := map[string]int{
		"preview.analyze_rows": cfg.Preview.AnalyzeRows,
		"preview.ask_rows":     cfg.Preview.AskRows,
		"preview.cli_rows":     cfg.Preview.CLIRows,
	}
	for _, key := range []string{"preview.analyze_rows", "preview.ask_rows", "preview.cli_rows"} {
		if rowCaps[key] <= 0 {
			issues = append(issues, Issue{
				Key:      key,
				Severity: "warning",
				Message:  fmt.Sprintf("%s is %d, the default of 50 rows will be used", key, rowCaps[key]),
			})
		}
	}

	if cfg.Server.MaxUpload == "" {
		issues = append(issues, Issue{
			Key:      "server.max_upload",
			Severity: "warning",
			Message:  "no upload size limit is set",
			Fix:      "set server.max_upload, e.g. 32M",
		})
	}

	return issues
}

// HasErrors reports whether any issue is an error.
func HasErrors(issues []Issue) bool {
	for _, issue := range issues {
		if issue.Severity == "error" {
			return true
		}
	}
	return false
}

// Masked returns a copy of cfg with API keys masked.
func Masked(cfg *Config) Config {
	masked := *cfg
	masked.APIKeys.Anthropic = mask(cfg.APIKeys.Anthropic)
	masked.APIKeys.OpenAI = mask(cfg.APIKeys.OpenAI)
	return masked
}

// Show renders the config as YAML with API keys masked.
func Show(cfg *Config) (string, error) {
	data, err := yaml.Marshal(Masked(cfg))
	if err != nil {
		return "", fmt.Errorf("could not render config: %w", err)
	}
	return string(data), nil
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	return key[:min(6, len(key))] + "****"
}
