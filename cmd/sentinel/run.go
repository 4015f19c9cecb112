package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sentinel-hq/sentinel/pkg/config"
	"sentinel-hq/sentinel/pkg/evaluation/aggregator"
	"sentinel-hq/sentinel/pkg/evaluation/evaluators"
	"sentinel-hq/sentinel/pkg/evaluation/manager"
	"sentinel-hq/sentinel/pkg/gateway"
	"sentinel-hq/sentinel/pkg/policy/engine"
	"sentinel-hq/sentinel/pkg/policy/store"
	"sentinel-hq/sentinel/pkg/providers"
	"sentinel-hq/sentinel/pkg/telemetry/health"
	"sentinel-hq/sentinel/pkg/telemetry/logging"
	"sentinel-hq/sentinel/pkg/telemetry/metrics"
)

var runFlags struct {
	listenAddress string
	logLevel      string
	dryRun        bool
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Start the Sentinel gateway",
	Long: `Start the Sentinel gateway with the specified configuration.

The gateway listens on the configured address, evaluates every chat
completion request against the enabled policies, and forwards allowed
requests to the configured provider.

Examples:
  # Start with default config
  sentinel run

  # Start with custom config
  sentinel run --config /etc/sentinel/config.yaml

  # Override listen address
  sentinel run --listen 0.0.0.0:8080

  # Validate config without starting the gateway
  sentinel run --dry-run`,
	RunE: runServer,
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringVarP(&runFlags.listenAddress, "listen", "l", "", "override listen address")
	runCmd.Flags().StringVar(&runFlags.logLevel, "log-level", "", "override log level (debug, info, warn, error)")
	runCmd.Flags().BoolVar(&runFlags.dryRun, "dry-run", false, "validate config without starting the gateway")
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if runFlags.listenAddress != "" {
		cfg.Server.ListenAddress = runFlags.listenAddress
	}
	if runFlags.logLevel != "" {
		cfg.Telemetry.Logging.Level = runFlags.logLevel
	}
	if verbose {
		cfg.Telemetry.Logging.Level = "debug"
	}

	logger, err := logging.New(cfg.Telemetry.Logging, os.Stdout)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	if runFlags.dryRun {
		fmt.Println("configuration valid")
		return nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Evaluator registry. Construction failures are fatal to startup;
	// individual load failures below are not.
	mgr, err := manager.New(logger,
		evaluators.NewKeywordFilter(evaluators.KeywordFilterConfig{
			Keywords: cfg.Evaluators.Keyword.Keywords,
			Patterns: cfg.Evaluators.Keyword.Patterns,
		}),
		evaluators.NewContentSafety(),
		evaluators.NewSemantic(),
		evaluators.NewPerformance(),
	)
	if err != nil {
		return fmt.Errorf("failed to build evaluator registry: %w", err)
	}

	for _, r := range mgr.LoadAll(ctx) {
		if r.Err != nil {
			logger.Warn("evaluator failed to load, continuing without it",
				"evaluator", r.Name, "error", r.Err)
		}
	}
	defer mgr.UnloadAll(context.Background())

	st, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.Close()

	registry, err := providers.NewRegistry(cfg.Providers)
	if err != nil {
		return fmt.Errorf("failed to build provider registry: %w", err)
	}

	var mx *metrics.Metrics
	if cfg.Telemetry.Metrics.Enabled {
		mx = metrics.New()
	}

	checker := health.NewChecker(mgr, mx, logger)
	if err := checker.StartSweep(cfg.Telemetry.Health.SweepSchedule); err != nil {
		return err
	}
	defer checker.StopSweep()

	srv, err := gateway.NewServer(gateway.Dependencies{
		Config:     cfg,
		Logger:     logger,
		Manager:    mgr,
		Engine:     engine.New(mgr, logger),
		Aggregator: aggregator.New(mgr, logger),
		Store:      st,
		Registry:   registry,
		Checker:    checker,
		Metrics:    mx,
		Version:    Version,
	})
	if err != nil {
		return err
	}

	logger.Info("sentinel starting",
		"version", Version,
		"listen_address", cfg.Server.ListenAddress,
		"policy_store", cfg.Policy.Store,
		"evaluators", mgr.Names(),
	)

	return srv.Start(ctx)
}

// loadConfig loads the configured file, falling back to pure defaults when
// the default config path does not exist.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadWithEnv(cfgFile)
	if err == nil {
		return cfg, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !rootCmd.PersistentFlags().Changed("config") {
		return config.Default(), nil
	}
	return nil, err
}

// openStore builds the configured policy store. Evaluation unavailability
// is tolerated elsewhere, but a store that cannot open is fatal.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (store.Store, error) {
	switch cfg.Policy.Store {
	case config.StoreMemory:
		return store.NewMemoryStore(), nil

	case config.StoreSQLite:
		s, err := store.NewSQLiteStore(store.SQLiteConfig{Path: cfg.Policy.SQLitePath})
		if err != nil {
			return nil, fmt.Errorf("failed to open policy database: %w", err)
		}
		return s, nil

	case config.StoreFile:
		s, err := store.NewFileStore(cfg.Policy.FilePath, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to load policy file: %w", err)
		}
		if cfg.Policy.Watch {
			if err := s.Watch(ctx); err != nil {
				return nil, err
			}
		}
		return s, nil

	default:
		return nil, fmt.Errorf("unknown policy store %q", cfg.Policy.Store)
	}
}
