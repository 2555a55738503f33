package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Promptonauts/embate/pkg/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the embate HTTP API",
	Long: `Serve the embate HTTP API until interrupted.

Examples:
  embate serve --addr :8080
  EMBATE_PROVIDER_KIND=openai EMBATE_PROVIDER_API_KEY=sk-... embate serve`,
	RunE: runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides server.addr)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	server := api.NewServer(a.controller, a.logger)
	g.Go(func() error {
		return server.Run(gctx, cfg.Server.Addr, cfg.Server.ShutdownTimeout)
	})
	if cfg.Server.MetricsAddr != "" {
		g.Go(func() error {
			return api.Serve(gctx, &http.Server{
				Addr:              cfg.Server.MetricsAddr,
				Handler:           api.MetricsHandler(),
				ReadHeaderTimeout: 10 * time.Second,
			}, a.logger, cfg.Server.ShutdownTimeout)
		})
	}
	return g.Wait()
}

// commandContext returns cmd's context, or Background when cobra did not set one.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
