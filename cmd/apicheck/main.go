package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-apicheck/internal/app"
	"github.com/samvad-hq/samvad-apicheck/internal/config"
	"github.com/samvad-hq/samvad-apicheck/internal/logger"
)

func main() {
	failed, err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "apicheck start failed: %v\n", err)
		os.Exit(1)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func run() (int, error) {
	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg); err != nil {
		return 0, fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("apicheck starting", "config", cfg.Redacted())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	checker, err := app.NewChecker(ctx, cfg, logger.Std{})
	if err != nil {
		logger.ErrorObj("failed to initialize checker", "error", err)
		return 0, err
	}
	defer func() {
		if err := checker.Close(); err != nil {
			logger.ErrorObj("close sinks failed", "error", err)
		}
	}()

	summary, err := checker.Run(ctx)
	if err != nil {
		return 0, fmt.Errorf("checker run: %w", err)
	}

	return summary.Failed, nil
}
