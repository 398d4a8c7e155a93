// Command aaisp prints broadband line status from the CHAOS API and runs a Prometheus exporter.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/aaisp/internal/config"
	logpkg "github.com/kailas-cloud/aaisp/internal/logger"
	"github.com/kailas-cloud/aaisp/internal/metrics"
	"github.com/kailas-cloud/aaisp/internal/repository/linecache"
	"github.com/kailas-cloud/aaisp/internal/transport/chaos"
	healthuc "github.com/kailas-cloud/aaisp/internal/usecase/health"
	lineuc "github.com/kailas-cloud/aaisp/internal/usecase/line"
)

type rootOptions struct {
	env        string
	configPath string
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "aaisp",
		Short:        "Andrews & Arnold broadband line status",
		Long:         `Query per-line rates and quota usage from the CHAOS API, or export them to Prometheus.`,
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&opts.env, "env", config.GetEnv(), "environment: local, dev, prod")
	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a config file (overrides --env lookup)")

	cmd.AddCommand(newLinesCmd(opts), newServeCmd(opts), newVersionCmd())
	return cmd
}

// app is the composition root shared by the commands that talk to CHAOS.
type app struct {
	env       string
	cfg       config.Config
	logger    *zap.Logger
	lineSvc   *lineuc.Service
	healthSvc *healthuc.Service
}

func (o *rootOptions) setup() (*app, error) {
	if err := config.LoadEnvFiles(o.env); err != nil {
		return nil, err
	}

	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load(o.env)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := logpkg.NewLogger(o.env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	// Register transport metrics explicitly (no init())
	if err := metrics.RegisterChaosMetrics(prometheus.DefaultRegisterer); err != nil {
		_ = logger.Sync()
		return nil, err
	}

	username, password := cfg.Chaos.Credentials()
	client, err := chaos.NewClient(chaos.Config{
		BaseURL:  cfg.Chaos.BaseURL,
		Username: username,
		Password: password,
		Timeout:  cfg.Chaos.Timeout(),
	})
	if err != nil {
		_ = logger.Sync()
		return nil, fmt.Errorf("set AAISP_USERNAME and AAISP_PASSWORD or chaos.username/password: %w", err)
	}

	lineSvc := lineuc.New(client, linecache.New())
	healthSvc := healthuc.New(map[string]healthuc.Checker{
		"chaos": healthuc.CheckerFunc(func(ctx context.Context) error {
			_, err := client.Info(ctx)
			return err
		}),
	})

	return &app{
		env:       o.env,
		cfg:       cfg,
		logger:    logger.With(zap.String("login", client.Username())),
		lineSvc:   lineSvc,
		healthSvc: healthSvc,
	}, nil
}

func (a *app) context(parent context.Context) context.Context {
	return logpkg.ContextWithLogger(parent, a.logger)
}
