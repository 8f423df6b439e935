// Package main is the entry point for the intake service CLI.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/intakehq/intake/internal/config"
	"github.com/intakehq/intake/internal/conversation"
	"github.com/intakehq/intake/internal/cron"
	"github.com/intakehq/intake/internal/export"
	"github.com/intakehq/intake/internal/gateway"
	"github.com/intakehq/intake/internal/history"
	"github.com/intakehq/intake/internal/history/sqlite"
	"github.com/intakehq/intake/internal/prompt"
	"github.com/intakehq/intake/internal/provider/openai"
	"github.com/intakehq/intake/internal/record"
	"github.com/intakehq/intake/internal/telemetry"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "intake",
		Short:         "Conversational job-intake backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), startCmd(), configCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("intake %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func startCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start the intake service",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			if cfgPath == "" {
				resolved, err := resolveConfigPath()
				if err != nil {
					return err
				}
				cfgPath = resolved
			}

			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			return run(cfg)
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "check <path>",
		Short: "Validate configuration",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			fmt.Println("Configuration OK")
			return nil
		},
	})
	return cmd
}

// run wires the service together and blocks until a shutdown signal.
func run(cfg *config.Config) error {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	ctx := context.Background()

	shutdownTracing, err := telemetry.Setup(ctx, telemetry.Config{
		OTLPEndpoint:   cfg.Telemetry.OTLPEndpoint,
		ServiceVersion: version,
	})
	if err != nil {
		return err
	}

	// History: SQLite when a path is configured, in-memory otherwise.
	var store history.Store
	if cfg.History.Path != "" {
		db, err := sqlite.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer db.Close()
		store = db
		logger.Info("history store ready", "backend", "sqlite", "path", cfg.History.Path)
	} else {
		store = history.NewInMemoryStore()
		logger.Warn("history store is in-memory, conversations are lost on restart")
	}

	sink, err := export.NewCSVSink(cfg.Export.Path, record.Header())
	if err != nil {
		return err
	}

	llm := openai.New(cfg.Provider)

	orch := conversation.New(conversation.Config{
		Prompt:      prompt.NewLoader(cfg.Prompt.Path),
		History:     store,
		Provider:    llm,
		Sink:        sink,
		Logger:      logger,
		RecentLimit: cfg.History.RecentLimit,
	})

	srv := gateway.New(cfg.Server, gateway.Options{
		Logger: logger,
		Conv:   orch,
		Health: llm,
	})
	if err := srv.Start(); err != nil {
		return err
	}

	var sched *cron.Scheduler
	if cfg.Retention.Enabled {
		sched = cron.NewScheduler(logger)
		if err := sched.RegisterJob(&cron.RetentionJob{
			Store:        store,
			MaxIdle:      cfg.Retention.MaxIdle,
			Logger:       logger,
			ScheduleExpr: cfg.Retention.Schedule,
		}); err != nil {
			return err
		}
		if err := sched.Start(); err != nil {
			return err
		}
	}

	logger.Info("intake started", "version", version, "model", llm.ModelName())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", "signal", sig.String())

	stopCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(stopCtx); err != nil {
			logger.Error("scheduler stop failed", "error", err)
		}
	}
	if err := srv.Stop(stopCtx); err != nil {
		logger.Error("gateway stop failed", "error", err)
	}
	if err := shutdownTracing(stopCtx); err != nil {
		logger.Error("trace flush failed", "error", err)
	}

	return nil
}

// resolveConfigPath searches for a config file in standard locations.
// Search order: $XDG_CONFIG_HOME/intake/intake.yaml → ./intake.yaml
func resolveConfigPath() (string, error) {
	var candidates []string

	if xdg, ok := os.LookupEnv("XDG_CONFIG_HOME"); ok {
		candidates = append(candidates, filepath.Join(xdg, "intake", "intake.yaml"))
	} else if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "intake", "intake.yaml"))
	}

	candidates = append(candidates, "intake.yaml")

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", fmt.Errorf("no configuration file found (searched: %v)", candidates)
}
