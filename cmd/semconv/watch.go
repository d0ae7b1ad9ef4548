package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/c360studio/semconv/catalog"
	"github.com/c360studio/semconv/config"
	"github.com/c360studio/semconv/elements"
	"github.com/c360studio/semconv/repository"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func watchCmd(flags *globalFlags) *cobra.Command {
	var metricsAddr string

	cmd := &cobra.Command{
		Use:   "watch <shape> <guid>",
		Short: "Re-project a bean whenever the fixture files change",
		Long: `Watch loads the fixture files into memory, prints the projected bean and
prints it again after every change to the fixtures. Prometheus metrics are
served on /metrics when a metrics address is configured.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			shape, err := elements.ParseShape(args[0])
			if err != nil {
				return err
			}

			logger := slog.Default()
			cfg, err := loadConfig(flags.configPath, logger)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if cfg.Repository.Backend != config.BackendMemory {
				return fmt.Errorf("watch requires the %s backend", config.BackendMemory)
			}
			if metricsAddr != "" {
				cfg.Metrics.Addr = metricsAddr
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			a, err := newApp(ctx, cfg, logger)
			if err != nil {
				return err
			}
			defer a.close(context.Background())

			if cfg.Metrics.Addr != "" {
				srv := serveMetrics(cfg.Metrics.Addr, a.registry, logger)
				defer func() {
					shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
					defer done()
					_ = srv.Shutdown(shutdownCtx)
				}()
			}

			watcher, err := repository.NewWatcher(repository.WatcherConfig{
				Patterns:      cfg.FixturePatterns(),
				DebounceDelay: cfg.Repository.WatchDebounce,
				Logger:        logger,
			}, a.memory)
			if err != nil {
				return fmt.Errorf("create watcher: %w", err)
			}
			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start watcher: %w", err)
			}
			defer watcher.Stop()

			return runWatch(ctx, a.service, shape, args[1], watcher.Events(), cmd.OutOrStdout(), logger)
		},
	}

	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "Listen address for /metrics (overrides config)")
	return cmd
}

// runWatch prints the projection once and again after every successful
// reload until ctx is done or events is closed.
func runWatch(ctx context.Context, svc *catalog.Service, shape elements.Shape, guid string,
	events <-chan repository.ReloadEvent, w io.Writer, logger *slog.Logger) error {
	if err := runProject(ctx, svc, shape, guid, w, logger); err != nil {
		logger.Warn("Projection failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-events:
			if !ok {
				return nil
			}
			if event.Error != nil {
				logger.Warn("Fixture reload failed", "error", event.Error)
				continue
			}
			logger.Info("Fixtures reloaded",
				"entities", event.Entities,
				"relationships", event.Relationships)
			if err := runProject(ctx, svc, shape, guid, w, logger); err != nil {
				logger.Warn("Projection failed", "error", err)
			}
		}
	}
}

// serveMetrics starts the /metrics endpoint in the background.
func serveMetrics(addr string, registry *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", "error", err)
		}
	}()
	return srv
}
