package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vango-dev/lazyroute/internal/config"
	"github.com/vango-dev/lazyroute/internal/feed"
	"github.com/vango-dev/lazyroute/pkg/bundle"
	"github.com/vango-dev/lazyroute/pkg/middleware"
	"github.com/vango-dev/lazyroute/pkg/navigation"
	"github.com/vango-dev/lazyroute/pkg/server"
)

func serveCmd(configPath *string) *cobra.Command {
	var (
		port    int
		host    string
		initial string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the navigation API",
		Long: `Start the HTTP API for a navigation controller.

The server exposes navigation endpoints under /api, a websocket feed
of state transitions on /ws and Prometheus metrics on /metrics.

Examples:
  lazyroute serve
  lazyroute serve -c examples/bank --port=9090
  lazyroute serve --initial=""`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, *configPath, host, port, initial)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from lazyroute.json)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from lazyroute.json)")
	cmd.Flags().StringVar(&initial, "initial", "/", "Path to navigate to on start; empty to start idle")

	return cmd
}

func runServe(ctx context.Context, configPath, host string, port int, initial string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if port > 0 {
		cfg.Server.Port = port
	}
	if host != "" {
		cfg.Server.Host = host
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	navTimeout, err := cfg.NavigateTimeout()
	if err != nil {
		return err
	}

	metrics := middleware.Prometheus()
	tracing := middleware.OpenTelemetry()

	loader, err := newLoader(cfg, logger, bundle.WithObserver(metrics))
	if err != nil {
		return err
	}
	store, closeStore, err := newScrollStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	table, err := cfg.Table()
	if err != nil {
		return err
	}

	hub := feed.New(feed.WithLogger(logger))
	viewport := server.NewViewport()
	opts := append(controllerOptions(cfg, logger, store),
		navigation.WithHooks(metrics, tracing),
		navigation.WithViewport(viewport),
		navigation.WithStateListener(server.Broadcast(hub)),
	)
	ctrl, err := navigation.New(table, loader, opts...)
	if err != nil {
		return err
	}

	if initial != "" {
		out := ctrl.Navigate(ctx, initial)
		if out.Status != navigation.Committed {
			logger.Warn("initial navigation did not commit", "path", initial, "status", out.Status, "error", out.Err)
		}
	}

	srv := server.New(ctrl, hub, serverConfig(cfg, navTimeout, viewport, logger))
	return srv.Run(ctx)
}

func serverConfig(cfg *config.Config, navTimeout time.Duration, viewport *server.Viewport, logger *slog.Logger) *server.ServerConfig {
	return &server.ServerConfig{
		Address:         cfg.Address(),
		NavigateTimeout: navTimeout,
		Viewport:        viewport,
		DisableMetrics:  cfg.Server.DisableMetrics,
		Logger:          logger,
	}
}
