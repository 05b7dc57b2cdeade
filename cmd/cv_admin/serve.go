package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonathan/cv-admin/internal/config"
	"github.com/jonathan/cv-admin/internal/enhance"
	"github.com/jonathan/cv-admin/internal/llm"
	"github.com/jonathan/cv-admin/internal/media"
	"github.com/jonathan/cv-admin/internal/server"
	"github.com/jonathan/cv-admin/internal/store"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start the HTTP server exposing the admin, AI enhancement and upload endpoints. Editing endpoints only work when APP_ENV=development.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort > 0 {
		cfg.Port = servePort
	}
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, cleanup, err := buildServer(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	return srv.Start(ctx)
}

// buildServer wires the store, AI client, image pipeline and HTTP server from cfg.
// cleanup closes the AI client.
func buildServer(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*server.Server, func(), error) {
	client, err := newLLMClient(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if client != nil {
			_ = client.Close()
		}
	}

	srv, err := server.New(server.Deps{
		Config: cfg,
		Store: store.NewGateway(store.Options{
			DataDir:     cfg.DataDir,
			Development: cfg.Development(),
			Mode:        cfg.Mode,
			Logger:      logger.Named("store"),
		}),
		Enhancer: enhance.NewService(client, enhance.Options{
			Timeout:       cfg.AITimeout(),
			AllowedModels: cfg.LLM.AllowedModels,
			Logger:        logger.Named("enhance"),
		}),
		Media: media.NewPipeline(media.Options{
			PublicDir:     cfg.PublicDir,
			UploadsSubdir: cfg.UploadsSubdir,
			Logger:        logger.Named("media"),
		}),
		Logger: logger,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to create server: %w", err)
	}
	return srv, cleanup, nil
}

// newLLMClient returns nil when no provider key is configured; the AI endpoint
// then answers UpstreamError instead of the server refusing to start.
func newLLMClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (llm.Client, error) {
	llmCfg, apiKey := cfg.LLMClientConfig()
	if apiKey == "" {
		logger.Warn("no AI provider key configured, /api/ai is disabled", zap.String("provider", cfg.LLM.Provider))
		return nil, nil
	}
	client, err := llm.NewClient(ctx, llmCfg, apiKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s client: %w", cfg.LLM.Provider, err)
	}
	return client, nil
}
