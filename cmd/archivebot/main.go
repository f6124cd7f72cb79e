package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"archive_bot/internal/classify"
	"archive_bot/internal/config"
	"archive_bot/internal/runner"
	"archive_bot/internal/slack"
	"archive_bot/internal/telegram"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "print the report to stdout instead of posting it")
	flag.Parse()

	// A missing .env is fine; the environment may already be set.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		os.Exit(1)
	}

	log := newLogger(cfg.LogLevel)

	api := slack.NewClient(slack.NewHTTPClient(), cfg.SlackAPIURL, cfg.SlackToken, log)

	r := runner.New(api, runner.Options{
		NotificationChannel:     cfg.NotificationChannel,
		SecondaryChannel:        cfg.SecondaryChannel,
		MessageHeaders:          cfg.MessageHeaders,
		SecondaryMessageHeaders: cfg.SecondaryMessageHeaders,
		Thresholds: classify.Thresholds{
			IgnorePrefixes: cfg.IgnorePrefixes,
			StaleAfter:     cfg.StaleAfter,
			SmallChannel:   cfg.SmallChannelThreshold,
		},
		HistoryLookback: cfg.HistoryLookback,
		PageSize:        cfg.PageSize,
		Concurrency:     cfg.Concurrency,
		DryRun:          *dryRun,
	}, log)

	if cfg.MirrorEnabled() && !*dryRun {
		m, err := telegram.New(cfg.TelegramBotToken, cfg.TelegramChatIDs, log)
		if err != nil {
			log.Error("create telegram mirror, continuing without it", "error", err)
		} else {
			r.SetMirror(m)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	log.Info("starting audit", "dry_run", *dryRun, "concurrency", cfg.Concurrency)

	sum, err := r.Run(ctx)
	if err != nil {
		log.Error("audit failed", "run_id", sum.RunID, "error", err)
		cancel()
		os.Exit(1)
	}

	log.Info("audit finished",
		"run_id", sum.RunID,
		"channels", sum.Channels,
		"reportable", sum.Reportable,
		"posted", sum.Posted,
		"mirrored", sum.Mirrored)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
