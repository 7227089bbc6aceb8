// Package serve provides the HTTP service command.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/klytics/sheetlens/internal/app"
	"github.com/klytics/sheetlens/internal/config"
	"github.com/klytics/sheetlens/internal/server"
)

// NewCommand returns the serve command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the upload and analysis HTTP service",
		Long: `Starts the HTTP service. POST a workbook to /analyze, or a workbook plus a
question to /ask. GET / serves a small upload page, /metrics exposes
prometheus metrics and /ping answers liveness checks.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.LoadConfig(cmd)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("addr", "", "Listen address (default from server.addr, :8080)")
	cmd.Flags().Bool("debug", false, "Development logging and echo debug mode")

	return cmd
}

func run(parent context.Context, cfg *config.Config) error {
	logger, err := app.NewLogger(cfg.Server.Debug)
	if err != nil {
		return err
	}
	log := logger.Sugar()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warnw("could not close provider", "error", err)
		}
	}()

	for _, issue := range config.Validate(cfg) {
		if issue.Severity == "error" {
			log.Errorw("config issue", "key", issue.Key, "message", issue.Message)
		}
	}

	e := server.New(server.Options{
		Service:   a.Service,
		Log:       log,
		MaxUpload: cfg.Server.MaxUpload,
		Debug:     cfg.Server.Debug,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infow("listening", "addr", cfg.Server.Addr, "provider", a.Provider.Name(), "model", cfg.Model)
		if err := e.Start(cfg.Server.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
