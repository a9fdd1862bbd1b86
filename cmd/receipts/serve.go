package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/spf13/cobra"

	"github.com/Veraticus/the-receipts-must-flow/internal/batch"
	"github.com/Veraticus/the-receipts-must-flow/internal/cli"
	"github.com/Veraticus/the-receipts-must-flow/internal/linebot"
	"github.com/Veraticus/the-receipts-must-flow/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the LINE webhook server",
		Long: `Run the webhook server.

Routes:
  GET  /health         liveness probe
  POST /callback       LINE webhook endpoint
  GET  /pdfs/<file>    issued receipts`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadAppConfig()
	if err != nil {
		return err
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	interruptHandler := cli.NewInterruptHandler(os.Stderr, "Serving")
	ctx := interruptHandler.HandleInterrupts(cmd.Context())

	source, cleanup, err := initRosterSource(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	renderer, orchestrator, err := newOrchestrator(cfg)
	if err != nil {
		return err
	}
	if cfg.FontPath != "" && !renderer.UsesEmbeddedFont() {
		slog.Warn("Japanese text will not render without a usable font", "font_path", cfg.FontPath)
	}

	bot, err := messaging_api.NewMessagingApiAPI(cfg.LINE.ChannelAccessToken)
	if err != nil {
		return fmt.Errorf("failed to create messaging client: %w", err)
	}

	svc := batch.NewService(cfg.Groups, source, renderer, orchestrator, slog.Default())
	webhook := linebot.NewHandler(cfg.LINE.ChannelSecret, bot, svc, slog.Default())

	srv := server.New(server.Config{
		Addr:      cfg.Server.Addr,
		OutputDir: cfg.OutputDir,
		PublicURL: cfg.Server.PublicURL,
	}, webhook, slog.Default())

	return srv.Run(ctx)
}
