package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shubh-37/post-scheduler/config"
	"github.com/shubh-37/post-scheduler/internal/agents"
	"github.com/shubh-37/post-scheduler/internal/database"
	"github.com/shubh-37/post-scheduler/internal/logging"
	slackpkg "github.com/shubh-37/post-scheduler/internal/slack"
)

func main() {
	if err := run(); err != nil {
		slog.Error("Post Scheduler Bot stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.LoadConfig()
	logging.InitLogger(cfg.LogLevel)

	slog.Info("🚀 Post Scheduler Bot starting...")
	if !cfg.DotEnvLoaded {
		slog.Debug("No .env file found, using environment variables")
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.NewDB(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.CreateTables(ctx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	postRepo := database.NewPostRepository(db)

	captionWriter, err := agents.NewCaptionWriter(cfg.AnthropicKey, agents.WithModel(cfg.AnthropicModel))
	if err != nil {
		return fmt.Errorf("failed to create caption writer: %w", err)
	}
	categorizer, err := agents.NewCategorizer(cfg.AnthropicKey, agents.WithModel(cfg.AnthropicModel))
	if err != nil {
		return fmt.Errorf("failed to create categorizer: %w", err)
	}
	scheduler := agents.NewScheduler(postRepo)

	slackClient, err := slackpkg.NewClient(cfg.SlackToken)
	if err != nil {
		return fmt.Errorf("failed to connect to Slack: %w", err)
	}

	approvalHandler := slackpkg.NewApprovalHandler(slackClient, postRepo)
	commandHandler := slackpkg.NewCommandHandler(
		slackClient,
		postRepo,
		captionWriter,
		categorizer,
		scheduler,
		cfg.Timezone,
	)
	messageHandler := slackpkg.NewMessageHandler(slackClient, commandHandler, approvalHandler)
	slackServer := slackpkg.NewServer(messageHandler, approvalHandler, cfg.SlackSigningSecret, db.Health)

	errCh := make(chan error, 1)
	go func() {
		errCh <- slackServer.Start(cfg.Port)
	}()

	slog.Info("✅ System initialized", "timezone", cfg.Timezone, "bot_id", slackClient.GetBotID())

	var serveErr error
	select {
	case <-ctx.Done():
		slog.Info("Shutting down gracefully...")
	case serveErr = <-errCh:
		if serveErr != nil {
			serveErr = fmt.Errorf("slack server stopped: %w", serveErr)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := slackServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("Failed to shut down server", "error", err)
	}

	return serveErr
}
