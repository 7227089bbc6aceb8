// Package app wires configuration, logging, the model provider and the
// analysis service together for the CLI commands and the HTTP server.
package app

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/klytics/sheetlens/internal/ai"
	"github.com/klytics/sheetlens/internal/analysis"
	"github.com/klytics/sheetlens/internal/config"
)

// App holds the long-lived values shared by every request.
type App struct {
	Config   *config.Config
	Provider ai.Provider
	Service  *analysis.Service
	Log      *zap.SugaredLogger
}

// flag name -> config key, applied only when the flag was set explicitly
var flagKeys = map[string]string{
	"provider": "provider",
	"model":    "model",
	"addr":     "server.addr",
	"debug":    "server.debug",
}

// LoadConfig loads the config named by --config, layering any explicitly set
// flags from flagKeys on top.
func LoadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")

	overrides := map[string]any{}
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil || !f.Changed {
			continue
		}
		if f.Value.Type() == "bool" {
			v, _ := cmd.Flags().GetBool(name)
			overrides[key] = v
			continue
		}
		overrides[key] = f.Value.String()
	}

	return config.Load(path, overrides)
}

// NewLogger returns a production logger, or a development one when debug is set.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// New builds the provider and service described by cfg.
func New(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) (*App, error) {
	if log == nil {
		log = zap.NewNop().Sugar()
	}

	provider, err := ai.NewProvider(ctx, cfg.AISettings())
	if err != nil {
		return nil, fmt.Errorf("could not set up %q provider: %w", cfg.Provider, err)
	}

	svc := analysis.New(analysis.Options{
		Provider:    provider,
		Prompts:     cfg.Prompts,
		AnalyzeRows: cfg.Preview.AnalyzeRows,
		AskRows:     cfg.Preview.AskRows,
		Logger:      log,
	})

	return &App{Config: cfg, Provider: provider, Service: svc, Log: log}, nil
}

// FromCommand is LoadConfig followed by New. CLI commands log only with --verbose.
func FromCommand(cmd *cobra.Command) (*App, error) {
	cfg, err := LoadConfig(cmd)
	if err != nil {
		return nil, err
	}

	log := zap.NewNop().Sugar()
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		l, err := zap.NewDevelopment()
		if err != nil {
			return nil, err
		}
		log = l.Sugar()
	}

	return New(cmd.Context(), cfg, log)
}

// Close releases the provider's resources and flushes the logger.
func (a *App) Close() error {
	_ = a.Log.Sync()
	if c, ok := a.Provider.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
