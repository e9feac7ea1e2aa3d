package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aretw0/concord"
	"github.com/aretw0/concord/internal/telemetry"
	httpadapter "github.com/aretw0/concord/pkg/adapters/http"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web onboarding server",
	Long: `Serves the onboarding page at /onboarding. Each visit mounts a page that
submits to the configured guidance endpoint. Idle pages are swept after
server.page_ttl.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		shutdownTracing, err := telemetry.Setup(ctx, "concord", strings.TrimSpace(concord.Version), cfg.Telemetry.OTelEndpoint)
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}
		defer shutdownTracing(context.Background())

		hist, err := openHistory(cfg.History, logger)
		if err != nil {
			return err
		}
		defer hist.Close()

		metrics := telemetry.NewMetrics()
		streams := httpadapter.NewStreamManager()

		hooks := []domain.LifecycleHooks{streams.Hooks(), telemetry.LogHooks(logger)}
		if cfg.Server.Metrics {
			hooks = append(hooks, metrics.Hooks())
		}
		if hist != nil {
			hooks = append(hooks, hist.Manager.Hooks())
		}

		pages := session.NewRegistry(newGuidanceClient(cfg),
			session.WithTTL(cfg.Server.PageTTL),
			session.WithPageHooks(domain.ChainHooks(hooks...)),
			session.WithRegistryLogger(logger),
		)

		opts := []httpadapter.Option{
			httpadapter.WithStreams(streams),
			httpadapter.WithLogger(logger),
		}
		if cfg.Server.Metrics {
			metrics.TrackPages(pages.Len)
			opts = append(opts, httpadapter.WithRoutes(func(r chi.Router) {
				r.Handle("/metrics", metrics.Handler())
			}))
		}

		if cfg.Server.SweepInterval > 0 {
			go func() {
				_ = pages.Run(ctx, cfg.Server.SweepInterval)
			}()
		}

		web := httpadapter.NewServer(pages, opts...)
		srv := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           web.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}
		logger.Info("Starting Concord Server",
			"address", srv.Addr,
			"guidance_endpoint", cfg.Guidance.Endpoint,
			"history", cfg.History.Backend,
		)
		serveErr := listenAndServe(ctx, srv)

		drainCtx, cancel := context.WithTimeout(context.Background(), drainTimeout(cfg.Guidance.Timeout))
		defer cancel()
		if err := web.Drain(drainCtx); err != nil {
			logger.Warn("Pending submits abandoned at shutdown", "error", err)
		}
		return serveErr
	},
}

// drainTimeout bounds the wait for background submits; each one is already
// limited by the guidance client timeout.
func drainTimeout(guidance time.Duration) time.Duration {
	if guidance <= 0 {
		return 30 * time.Second
	}
	return guidance + time.Second
}

// listenAndServe runs srv until ctx is cancelled, then shuts it down gracefully.
func listenAndServe(ctx context.Context, srv *http.Server) error {
	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Start shutdown...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete: %w", err)
		}
		logger.Info("Server stopped gracefully", "address", srv.Addr)
		return nil
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("addr", "", "Address to listen on (default :8080)")
	serveCmd.Flags().String("endpoint", "", "Guidance endpoint the pages submit to")
	serveCmd.Flags().String("history", "", "History backend: none, memory, file, redis or sqlite")
	serveCmd.Flags().Bool("metrics", true, "Expose Prometheus metrics at /metrics")
	bindFlags(serveCmd, map[string]string{
		"addr":     "server.addr",
		"endpoint": "guidance.endpoint",
		"history":  "history.backend",
		"metrics":  "server.metrics",
	})
}
