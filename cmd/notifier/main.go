// Package main is the entrypoint for the deadline notifier. It scans every
// account's approved reports and emails a digest of sessions due within the
// next two business days. Run with -once for a single sweep (cron-from-CI
// style) or without flags to keep an in-process cron schedule.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/urbanosolucoes/licitahub/internal/config"
	"github.com/urbanosolucoes/licitahub/internal/notify"
	"github.com/urbanosolucoes/licitahub/internal/store"
)

const sweepTimeout = 10 * time.Minute

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	once := flag.Bool("once", false, "run a single sweep and exit")
	flag.Parse()

	if err := run(*once); err != nil {
		slog.Error("notifier failed", "error", err)
		os.Exit(1)
	}
}

func run(once bool) error {
	cfg, err := config.LoadNotifier()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	loc, err := time.LoadLocation(cfg.Notify.Timezone)
	if err != nil {
		return fmt.Errorf("load timezone %q: %w", cfg.Notify.Timezone, err)
	}

	pgStore := store.NewPostgresStore(pool)
	mailer := notify.NewSMTPMailer(cfg.SMTP)
	dispatcher := notify.NewDispatcher(mailer, cfg.Notify.AppBaseURL)
	scanner := notify.NewScanner(pgStore, dispatcher, loc)

	if once {
		return sweep(ctx, scanner)
	}

	c := cron.New(cron.WithLocation(loc))
	if _, err := c.AddFunc(cfg.Notify.CronSpec, func() {
		if err := sweep(ctx, scanner); err != nil {
			slog.Error("scheduled sweep failed", "error", err)
		}
	}); err != nil {
		return fmt.Errorf("invalid cron spec %q: %w", cfg.Notify.CronSpec, err)
	}

	slog.Info("notifier scheduled", "cron", cfg.Notify.CronSpec, "timezone", cfg.Notify.Timezone)
	c.Start()

	<-ctx.Done()
	slog.Info("shutdown signal received")

	// Let an in-flight sweep finish before exiting.
	<-c.Stop().Done()
	slog.Info("notifier stopped gracefully")
	return nil
}

func sweep(ctx context.Context, scanner *notify.Scanner) error {
	sweepCtx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	start := time.Now()
	lines, err := scanner.Run(sweepCtx)
	if err != nil {
		return fmt.Errorf("deadline sweep: %w", err)
	}
	for _, line := range lines {
		slog.Info(line)
	}
	slog.Info("sweep finished", "users", len(lines), "duration_ms", time.Since(start).Milliseconds())
	return nil
}
