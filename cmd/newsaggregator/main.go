package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"NewsAggregator/internal/app"
	"NewsAggregator/internal/config"
	"NewsAggregator/internal/logging"
)

func main() {
	_ = godotenv.Load()

	var (
		source   = flag.String("source", "", "fetch a single source by name, slug or type")
		category = flag.String("category", "", "free-text query/category hint passed to providers")
		limit    = flag.Int("limit", 0, "max articles per source (0 uses the configured default)")
		once     = flag.Bool("once", false, "dispatch one ingestion run, drain the queue and exit")
	)
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()
	logger := logging.New(cfg.Logging.Level, cfg.Logging.Format)

	application, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}
	defer application.Close()

	err = application.Run(ctx, app.RunOptions{
		Once:     *once,
		Source:   *source,
		Category: *category,
		Limit:    *limit,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("application stopped", "error", err)
		os.Exit(1)
	}
}
