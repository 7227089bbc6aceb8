// Package doctor provides the "sheetlens doctor" command for checking system health.
package doctor

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/klytics/sheetlens/internal/ai"
	"github.com/klytics/sheetlens/internal/app"
	"github.com/klytics/sheetlens/internal/config"
)

// Check represents a single health check result.
type Check struct {
	Name    string `json:"name"`
	Status  string `json:"status"` // "ok", "warning", "error"
	Message string `json:"message"`
}

// NewCommand creates the "doctor" command.
func NewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check configuration and model connectivity",
		Long:  "Run diagnostic checks to verify SheetLens is configured and can reach its model provider.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(cmd)
			if err != nil {
				return err
			}
			checks := runChecks(cmd.Context(), cfg)

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(os.Stdout).Encode(checks)
			}

			green := color.New(color.FgGreen).SprintFunc()
			yellow := color.New(color.FgYellow).SprintFunc()
			red := color.New(color.FgRed).SprintFunc()

			fmt.Println("SheetLens Doctor")
			fmt.Println("================")
			fmt.Println()

			okCount, warnCount, errCount := 0, 0, 0
			for _, c := range checks {
				var icon string
				switch c.Status {
				case "ok":
					icon = green("✓")
					okCount++
				case "warning":
					icon = yellow("!")
					warnCount++
				case "error":
					icon = red("✗")
					errCount++
				}
				fmt.Printf("  %s %s: %s\n", icon, c.Name, c.Message)
			}

			fmt.Println()
			fmt.Printf("  %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

			if errCount > 0 {
				return fmt.Errorf("%d check(s) failed", errCount)
			}
			return nil
		},
	}
}

func runChecks(ctx context.Context, cfg *config.Config) []Check {
	var checks []Check

	checks = append(checks, Check{
		Name:    "Go Runtime",
		Status:  "ok",
		Message: fmt.Sprintf("%s %s/%s", runtime.Version(), runtime.GOOS, runtime.GOARCH),
	})

	configFile := config.ConfigPath()
	if _, err := os.Stat(configFile); err == nil {
		checks = append(checks, Check{Name: "Config File", Status: "ok", Message: configFile})
	} else {
		checks = append(checks, Check{
			Name:    "Config File",
			Status:  "warning",
			Message: fmt.Sprintf("%s not found — using defaults and SHEETLENS_* environment", configFile),
		})
	}

	for _, issue := range config.Validate(cfg) {
		status := issue.Severity
		if status == "info" {
			status = "ok"
		}
		checks = append(checks, Check{Name: "Config " + issue.Key, Status: status, Message: issue.Message})
	}

	if strings.EqualFold(cfg.Provider, "ollama") || cfg.Provider == "" {
		checks = append(checks, checkOllama(ctx, ai.OllamaHost(cfg.Ollama.Host)))
	}

	return checks
}

// checkOllama asks the Ollama server for its local model list.
func checkOllama(ctx context.Context, host string) Check {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	url := strings.TrimRight(host, "/") + "/api/tags"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Check{Name: "Ollama", Status: "error", Message: err.Error()}
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return Check{Name: "Ollama", Status: "error", Message: fmt.Sprintf("not reachable at %s — is 'ollama serve' running?", host)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Check{Name: "Ollama", Status: "error", Message: fmt.Sprintf("%s returned status %d", url, resp.StatusCode)}
	}
	return Check{Name: "Ollama", Status: "ok", Message: "reachable at " + host}
}
