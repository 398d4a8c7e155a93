package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/aaisp/internal/domain/unit"
	"github.com/kailas-cloud/aaisp/internal/metrics"
	chiTransport "github.com/kailas-cloud/aaisp/internal/transport/chi"
	"github.com/kailas-cloud/aaisp/internal/version"
)

func newServeCmd(root *rootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the Prometheus exporter and line status API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := root.setup()
			if err != nil {
				return err
			}
			defer func() { _ = a.logger.Sync() }()

			if cmd.Flags().Changed("port") {
				a.cfg.HTTP.Port = port
			}
			return runServe(cmd.Context(), a)
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "listen port (default from config)")
	return cmd
}

func runServe(parent context.Context, a *app) error {
	cfg, logger := a.cfg, a.logger

	logger.Info("Starting aaisp exporter",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", a.env),
		zap.Int("http_port", cfg.HTTP.Port),
	)

	if err := cfg.Auth.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if !cfg.Auth.Enabled() {
		logger.Warn("Bearer authentication disabled: no auth.api_keys configured")
	}

	if err := metrics.RegisterHTTPMetrics(prometheus.DefaultRegisterer); err != nil {
		return err
	}
	collector := metrics.NewLineCollector(a.lineSvc, time.Duration(cfg.Exporter.ScrapeTimeoutSec)*time.Second, logger)
	if err := prometheus.Register(collector); err != nil {
		return fmt.Errorf("register line collector: %w", err)
	}

	display, err := serverDisplay(a)
	if err != nil {
		return err
	}
	server := chiTransport.NewServer(a.lineSvc, a.healthSvc, prometheus.DefaultGatherer, logger).
		WithDisplay(display)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Handler(cfg.Auth.Keys()),
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
		BaseContext:  func(_ net.Listener) context.Context { return a.context(context.Background()) },
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Received shutdown signal")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}
	logger.Info("Server stopped gracefully")
	return nil
}

func serverDisplay(a *app) (chiTransport.Display, error) {
	rate, err := unit.ParseFormat(a.cfg.Display.RateUnit)
	if err != nil {
		return chiTransport.Display{}, fmt.Errorf("display.rate_unit: %w", err)
	}
	quota, err := unit.ParseFormat(a.cfg.Display.QuotaUnit)
	if err != nil {
		return chiTransport.Display{}, fmt.Errorf("display.quota_unit: %w", err)
	}
	return chiTransport.Display{RateUnit: rate, QuotaUnit: quota, Precision: *a.cfg.Display.Precision}, nil
}
