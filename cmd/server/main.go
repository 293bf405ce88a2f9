package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/mcoot/anagrams-go/internal/api"
	"github.com/mcoot/anagrams-go/internal/config"
	"github.com/mcoot/anagrams-go/internal/factory"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := newServerCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(1)
	}
}

func newServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "anagrams-server",
		Short:         "Matchmaking and session server for the two-player anagrams game",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags())
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	config.RegisterFlags(cmd.Flags())
	cmd.CompletionOptions.HiddenDefaultCmd = true

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	level, err := cfg.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	app, err := factory.New(factory.ConfigFrom(cfg, logger))
	if err != nil {
		return fmt.Errorf("create application: %w", err)
	}
	defer func() {
		if err := app.Close(); err != nil {
			logger.Error("close error", slog.String("error", err.Error()))
		}
	}()

	if err := app.Reset(ctx); err != nil {
		return err
	}

	router := api.NewRouter(api.RouterConfig{
		Logger:      logger,
		Rooms:       app.Coordinator,
		RoomLister:  app.Rooms,
		Connections: app.Connections,
		Realtime:    app.Realtime,
		PublicURL:   cfg.PublicURL,
	})

	serverConfig := api.DefaultServerConfig()
	serverConfig.Host = cfg.Host
	serverConfig.Port = cfg.Port
	server := api.NewServer(router, serverConfig, logger)
	server.OnShutdown(app.Connections.Close)

	logger.Info("server configured",
		slog.String("addr", server.Addr()),
		slog.String("storage", cfg.StorageType),
		slog.String("words_source", cfg.WordsSource),
		slog.Int("word_length", cfg.WordLength),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutdown signal received")
		return server.Shutdown(context.Background())
	})

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("server stopped")
	return nil
}
