package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mcoot/blazeboard/internal/api"
	"github.com/mcoot/blazeboard/internal/config"
	"github.com/mcoot/blazeboard/internal/factory"
	"github.com/mcoot/blazeboard/internal/logging"
	"github.com/mcoot/blazeboard/internal/metrics"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:          "blaze-server",
		Short:        "Serve the Blaze scoreboard API",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()
			return run(ctx, configPath)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", os.Getenv("BLAZE_CONFIG"), "Path to a YAML config file (env: BLAZE_CONFIG)")

	return cmd
}

func run(ctx context.Context, configPath string) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(os.Stdout, settings.Log.Level, settings.Log.Format)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	slog.SetDefault(logger)

	var recorder *metrics.Recorder
	if settings.Metrics.Enabled {
		recorder = metrics.NewRecorder()
	}

	cfg, err := factory.ConfigFromSettings(settings, logger, recorder)
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return err
	}

	// Create application factory; this loads the persisted match
	app, err := factory.New(ctx, cfg)
	if err != nil {
		logger.Error("failed to create application", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Warn("failed to close storage", slog.String("error", err.Error()))
		}
	}()

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		MatchStore:  app.MatchStore,
		Metrics:     recorder,
		MetricsPath: settings.Metrics.Path,
		CORSOrigin:  settings.Server.CORSOrigin,
	})

	server := api.NewServer(router, api.ServerConfig{
		Host:            settings.Server.Host,
		Port:            settings.Server.Port,
		ReadTimeout:     settings.Server.ReadTimeout,
		WriteTimeout:    settings.Server.WriteTimeout,
		ShutdownTimeout: settings.Server.ShutdownTimeout,
	}, logger)

	// Start server in goroutine
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	logger.Info("server started",
		slog.String("addr", server.Addr()),
		slog.String("storage", settings.Storage.Type),
		slog.String("scoring_policy", settings.Match.ScoringPolicy),
	)

	// Wait for shutdown or error
	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", slog.String("error", err.Error()))
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received")
		if err := server.Shutdown(context.Background()); err != nil {
			logger.Error("shutdown error", slog.String("error", err.Error()))
			return err
		}
	}

	logger.Info("server stopped")
	return nil
}
