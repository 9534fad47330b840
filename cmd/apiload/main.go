package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samvad-hq/samvad-apicheck/internal/config"
	"github.com/samvad-hq/samvad-apicheck/internal/logger"
	"github.com/samvad-hq/samvad-apicheck/pkg/apiclient"
	"github.com/samvad-hq/samvad-apicheck/pkg/endpoints"
	"github.com/samvad-hq/samvad-apicheck/pkg/probe"
)

func main() {
	endpointName := flag.String("endpoint", "", "endpoint name from the registry to load test")
	requests := flag.Int("requests", 100, "total number of requests to issue")
	workers := flag.Int("workers", 10, "number of concurrent workers")
	flag.Parse()

	failures, err := run(*endpointName, *requests, *workers)
	if err != nil {
		fmt.Fprintf(os.Stderr, "apiload start failed: %v\n", err)
		os.Exit(1)
	}
	if failures > 0 {
		os.Exit(1)
	}
}

func run(endpointName string, requests, workers int) (int, error) {
	if endpointName == "" {
		return 0, fmt.Errorf("-endpoint is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return 0, fmt.Errorf("load config: %w", err)
	}

	if _, err := logger.Init(cfg); err != nil {
		return 0, fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := apiclient.New(apiclient.Options{
		BaseURL:       cfg.APIBaseURL,
		Timeout:       cfg.Timeout,
		SkipTLSVerify: !cfg.VerifyTLS,
	}, logger.NopLogger{})
	if err != nil {
		return 0, fmt.Errorf("init api client: %w", err)
	}
	if cfg.AuthToken != "" {
		client.SetAuthToken(cfg.AuthToken)
	}
	if cfg.APIKey != "" {
		client.SetAPIKey(cfg.APIKey)
	}

	registry, err := endpoints.LoadRegistry(cfg.EndpointsFile)
	if err != nil {
		return 0, fmt.Errorf("load endpoints registry: %w", err)
	}
	ep, ok := registry.Endpoint(endpointName)
	if !ok {
		return 0, fmt.Errorf("endpoint %q not found in %s", endpointName, cfg.EndpointsFile)
	}
	path, err := ep.Expand(nil)
	if err != nil {
		return 0, err
	}

	check := probe.Check{
		Name: ep.Name,
		Run: func(ctx context.Context, client apiclient.Client) error {
			resp, err := client.Request(ctx, ep.Method, path)
			if err != nil {
				return err
			}
			if resp.StatusCode() >= 400 {
				return fmt.Errorf("%s returned status %d", path, resp.StatusCode())
			}
			return nil
		},
	}

	logger.InfoObj("load run starting", "load_meta", map[string]any{
		"endpoint": ep.Name,
		"path":     path,
		"requests": requests,
		"workers":  workers,
	})

	report := probe.RunLoad(ctx, client, check, probe.LoadProfile{Requests: requests, Workers: workers})

	logger.InfoObj("load run completed", "load_report", map[string]any{
		"endpoint":   ep.Name,
		"total":      report.Total,
		"failures":   report.Failures,
		"min_ms":     report.Min.Milliseconds(),
		"avg_ms":     report.Avg.Milliseconds(),
		"max_ms":     report.Max.Milliseconds(),
		"elapsed_ms": report.Elapsed.Milliseconds(),
	})

	return report.Failures, nil
}
