package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/tranvm/dictd/internal/bootstrap"
	"github.com/tranvm/dictd/internal/dictionary"
	"github.com/tranvm/dictd/internal/server"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the dictionary server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context())
		},
	}
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loadConfig: %w", err)
	}

	snapshotter, err := newSnapshotter(cfg)
	if err != nil {
		return err
	}
	store, err := dictionary.NewStore(snapshotter)
	if err != nil {
		return fmt.Errorf("dictionary.NewStore: %w", err)
	}

	users, err := newDirectory(cfg)
	if err != nil {
		return fmt.Errorf("load user directory: %w", err)
	}

	logger := slog.Default()
	logger.Info("dictionary loaded",
		"words", store.WordCount(),
		"pending", store.PendingCount(),
		"driver", cfg.Storage.Driver,
	)

	srv := server.New(server.Config{
		Address:     cfg.Server.Address,
		GracePeriod: time.Duration(cfg.Server.GracePeriodSeconds) * time.Second,
	}, store, users, logger)

	app := bootstrap.New()
	app.AddShutdownHook(srv.Stop)

	return app.Run(ctx, func(ctx context.Context) error {
		return srv.Start(ctx)
	})
}
