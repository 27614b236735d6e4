package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/presentation/tui"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	"github.com/aretw0/arbor/pkg/adapters/memory"
	"github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/observability"
	"github.com/aretw0/arbor/pkg/ports"
	"github.com/aretw0/arbor/pkg/registry"
	"github.com/aretw0/arbor/pkg/tree"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Starts the tree registry behind a JSON API over HTTP.

Lifecycle events stream on /events (SSE). With --redis-addr they are also
published on a Redis channel. Prometheus metrics are served on /metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := settings(cmd)
			if err != nil {
				return err
			}
			applyServeFlags(cmd, &cfg)

			handler, cleanup, err := buildServer(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer cleanup()

			srv := &http.Server{
				Addr:              fmt.Sprintf(":%d", cfg.Port),
				Handler:           handler,
				ReadHeaderTimeout: 10 * time.Second,
			}

			if isTerminal(cmd.OutOrStdout()) {
				tui.PrintBanner(cmd.OutOrStdout())
			}

			// Channel to listen for errors coming from the listener.
			serverErrors := make(chan error, 1)

			go func() {
				logger.Info("Starting arbor server", "address", srv.Addr, "metrics", cfg.Metrics, "redis", cfg.Redis.Addr)
				serverErrors <- srv.ListenAndServe()
			}()

			// Channel to listen for interrupt or terminate signals.
			shutdown := make(chan os.Signal, 1)
			signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(shutdown)

			select {
			case err := <-serverErrors:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return fmt.Errorf("server error: %w", err)

			case sig := <-shutdown:
				logger.Info("Start shutdown", "signal", sig.String())

				// Give outstanding requests a deadline for completion.
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()

				if err := srv.Shutdown(ctx); err != nil {
					logger.Error("Graceful shutdown did not complete", "timeout", 5*time.Second, "error", err)
					return srv.Close()
				}
				logger.Info("arbor server stopped gracefully")
				return nil
			}
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().Bool("metrics", true, "Serve Prometheus metrics on /metrics")
	cmd.Flags().String("redis-addr", "", "Redis address for event publishing (disabled when empty)")
	cmd.Flags().String("redis-password", "", "Redis password")
	cmd.Flags().Int("redis-db", 0, "Redis database")
	cmd.Flags().String("redis-channel", redis.DefaultChannel, "Redis pub/sub channel")
	return cmd
}

// applyServeFlags overrides config values with the flags that were set explicitly.
func applyServeFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port, _ = flags.GetInt("port")
	}
	if flags.Changed("metrics") {
		cfg.Metrics, _ = flags.GetBool("metrics")
	}
	if flags.Changed("redis-addr") {
		cfg.Redis.Addr, _ = flags.GetString("redis-addr")
	}
	if flags.Changed("redis-password") {
		cfg.Redis.Password, _ = flags.GetString("redis-password")
	}
	if flags.Changed("redis-db") {
		cfg.Redis.DB, _ = flags.GetInt("redis-db")
	}
	if flags.Changed("redis-channel") {
		cfg.Redis.Channel, _ = flags.GetString("redis-channel")
	}
}

// buildServer wires the registry, event publishers and metrics into one handler.
// The returned cleanup closes any external connection.
func buildServer(ctx context.Context, cfg config.Config, logger *slog.Logger) (http.Handler, func(), error) {
	cleanup := func() {}

	events := memory.NewPublisher(64, memory.WithLogger(logger))
	hooks := []domain.LifecycleHooks{
		observability.PublishingHooks(events, logger),
	}

	var stream ports.EventStream = events
	if cfg.Redis.Addr != "" {
		channel := cfg.Redis.Channel
		if channel == "" {
			channel = redis.DefaultChannel
		}
		pub := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithChannel(channel),
			redis.WithLogger(logger),
		)
		if err := pub.Ping(ctx); err != nil {
			pub.Close()
			return nil, cleanup, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
		hooks = append(hooks, observability.PublishingHooks(pub, logger))
		cleanup = func() {
			if err := pub.Close(); err != nil {
				logger.Warn("failed to close redis publisher", "error", err)
			}
		}
	}

	promRegistry := prometheus.NewRegistry()
	if cfg.Metrics {
		metrics, err := observability.NewMetrics(promRegistry)
		if err != nil {
			return nil, cleanup, err
		}
		hooks = append(hooks, metrics.Hooks())
	}

	reg := registry.NewRegistry(
		registry.WithLogger(logger),
		registry.WithTreeOptions(
			tree.WithLogger(logger),
			tree.WithLifecycleHooks(observability.CombineHooks(hooks...)),
		),
	)

	api := httpAdapter.NewHandler(reg,
		httpAdapter.WithEventStream(stream),
		httpAdapter.WithLogger(logger),
	)

	mux := http.NewServeMux()
	if cfg.Metrics {
		mux.Handle("/metrics", promhttp.HandlerFor(promRegistry, promhttp.HandlerOpts{}))
	}
	mux.Handle("/", api)
	return mux, cleanup, nil
}
