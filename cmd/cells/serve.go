package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	nethttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"

	"github.com/aretw0/cells/internal/presentation/tui"
	"github.com/aretw0/cells/pkg/adapters/http"
	"github.com/aretw0/cells/pkg/adapters/redis"
	"github.com/aretw0/cells/pkg/observability"
	"github.com/aretw0/cells/pkg/organism"
)

const shutdownTimeout = 5 * time.Second

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve <blueprint.yaml>",
		Short: "Serve an organism membrane over HTTP",
		Long:  `Builds the blueprint, brings it to life and exposes the root membrane as a JSON API with a server-sent record stream.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := loggerFor(cmd)
			if err != nil {
				return err
			}
			port, _ := cmd.Flags().GetString("port")
			redisAddr, _ := cmd.Flags().GetString("redis")
			withMetrics, _ := cmd.Flags().GetBool("metrics")
			logRecords, _ := cmd.Flags().GetBool("log-records")

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			root, api, err := grow(args[0],
				organism.WithLogger(logger),
				organism.WithTracer(otel.Tracer("github.com/aretw0/cells")),
			)
			if err != nil {
				return err
			}
			defer root.Apoptosis()

			if logRecords {
				root.Subscribe(observability.LogObserver(logger, slog.LevelInfo))
			}
			if redisAddr != "" {
				pub := redis.New(redisAddr, "", 0, redis.WithLogger(logger))
				defer pub.Close()
				root.Subscribe(pub.Observer(ctx))
			}
			var reg *prometheus.Registry
			if withMetrics {
				reg = prometheus.NewRegistry()
				metrics, err := observability.NewMetrics(reg)
				if err != nil {
					return err
				}
				root.Subscribe(metrics.Observe)
			}

			server := http.NewServer(api, http.WithLogger(logger))
			defer server.Close()

			srv := &nethttp.Server{
				Addr:              ":" + port,
				Handler:           newServeHandler(server, reg),
				ReadHeaderTimeout: 10 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return ctx },
			}
			tui.PrintBanner(cmd.ErrOrStderr())
			return run(ctx, srv, logger)
		},
	}
	cmd.Flags().StringP("port", "p", "8080", "Port to listen on")
	cmd.Flags().String("redis", "", "Redis address to publish records to (disabled when empty)")
	cmd.Flags().Bool("metrics", true, "Expose Prometheus metrics at /metrics")
	cmd.Flags().Bool("log-records", false, "Log every record emitted by the tree")
	return cmd
}

// newServeHandler mounts the membrane API and, when reg is set, the metrics
// endpoint.
func newServeHandler(api nethttp.Handler, reg *prometheus.Registry) nethttp.Handler {
	r := chi.NewRouter()
	if reg != nil {
		r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	}
	r.Mount("/", api)
	return r
}

// run blocks until the server fails or ctx is cancelled, then shuts down.
func run(ctx context.Context, srv *nethttp.Server, logger *slog.Logger) error {
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("serving membrane", "addr", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, nethttp.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "error", err)
			return srv.Close()
		}
		return nil
	}
}
