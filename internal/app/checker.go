package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/samvad-hq/samvad-apicheck/internal/config"
	"github.com/samvad-hq/samvad-apicheck/internal/domain"
	"github.com/samvad-hq/samvad-apicheck/internal/logger"
	"github.com/samvad-hq/samvad-apicheck/internal/recorder"
	"github.com/samvad-hq/samvad-apicheck/pkg/apiclient"
	"github.com/samvad-hq/samvad-apicheck/pkg/endpoints"
	"github.com/samvad-hq/samvad-apicheck/pkg/probe"
	"github.com/samvad-hq/samvad-apicheck/pkg/sinks"
	"github.com/samvad-hq/samvad-apicheck/pkg/validate"
)

// Checker represents the API checker runtime. It wires the HTTP client, the
// endpoint registry, the result sinks, and the exchange recorder, and executes
// every declared endpoint check once through the worker pool.
type Checker struct {
	cfg      *config.Config
	client   *apiclient.RestyClient
	registry *endpoints.Registry
	runner   *probe.Runner
	fanout   *sinks.Fanout
	store    recorder.Store
	suites   []probe.Suite
	log      logger.Logger

	mu       sync.Mutex
	statuses map[string]int
}

// NewChecker builds a checker runtime from config files.
func NewChecker(ctx context.Context, cfg *config.Config, log logger.Logger) (*Checker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	client, err := apiclient.New(apiclient.Options{
		BaseURL:       cfg.APIBaseURL,
		Timeout:       cfg.Timeout,
		RetryCount:    cfg.RetryCount,
		RetryDelay:    cfg.RetryDelay,
		SkipTLSVerify: !cfg.VerifyTLS,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("init api client: %w", err)
	}
	if cfg.AuthToken != "" {
		client.SetAuthToken(cfg.AuthToken)
	}
	if cfg.APIKey != "" {
		client.SetAPIKey(cfg.APIKey)
	}

	registry, err := endpoints.LoadRegistry(cfg.EndpointsFile)
	if err != nil {
		return nil, fmt.Errorf("load endpoints registry: %w", err)
	}
	endpointList := registry.All()
	endpointNames := make([]string, 0, len(endpointList))
	for _, ep := range endpointList {
		endpointNames = append(endpointNames, ep.Name)
	}
	log.InfoObj("endpoints registry loaded", "endpoints_meta", map[string]any{
		"count": len(endpointNames),
		"names": endpointNames,
	})

	sinkReg, err := sinks.LoadRegistry(cfg.SinksFile)
	if err != nil {
		return nil, fmt.Errorf("load sinks registry: %w", err)
	}
	enabledSinks := sinkReg.Enabled()
	if len(enabledSinks) == 0 {
		return nil, fmt.Errorf("no sinks configured")
	}
	sinkClients, err := sinks.BuildAll(ctx, sinks.DefaultRegistry(), enabledSinks, log)
	if err != nil {
		return nil, fmt.Errorf("build sinks: %w", err)
	}
	fanout := sinks.NewFanout(sinkClients)
	sinkSummaries := make([]map[string]string, 0, len(enabledSinks))
	for _, sinkCfg := range enabledSinks {
		sinkSummaries = append(sinkSummaries, map[string]string{
			"id":   sinkCfg.ID,
			"type": sinkCfg.Type,
		})
	}
	log.InfoObj("sinks registry loaded", "sinks_meta", map[string]any{
		"count": len(sinkSummaries),
		"sinks": sinkSummaries,
	})

	store, err := recorder.NewStore(cfg.RecorderType, cfg.RecorderPath, recorder.Options{
		ExchangeTTL: cfg.RecorderTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("init recorder: %w", err)
	}
	log.InfoObj("recorder initialized", "recorder_config", map[string]any{
		"type":        cfg.RecorderType,
		"path":        cfg.RecorderPath,
		"ttl_seconds": int(cfg.RecorderTTL.Seconds()),
	})

	checker := &Checker{
		cfg:      cfg,
		client:   client,
		registry: registry,
		runner:   probe.NewRunner(client, cfg.ParallelWorkers, log),
		fanout:   fanout,
		store:    store,
		log:      log,
		statuses: make(map[string]int),
	}

	suite, err := checker.buildSuite(endpointList)
	if err != nil {
		return nil, err
	}
	checker.suites = []probe.Suite{suite}

	return checker, nil
}

// Run executes every endpoint check once, publishes each outcome to the sinks,
// and returns the run summary.
func (c *Checker) Run(ctx context.Context) (domain.RunSummary, error) {
	if c == nil || c.runner == nil {
		return domain.RunSummary{}, fmt.Errorf("checker is not initialized")
	}
	defer c.closeStore()

	runID := uuid.NewString()
	c.log.InfoObj("run starting", "run_meta", map[string]any{
		"run_id":      runID,
		"suites":      len(c.suites),
		"workers":     c.cfg.ParallelWorkers,
		"sinks_count": c.fanout.Size(),
	})

	results, summary := c.runner.Run(ctx, c.suites)

	for _, res := range results {
		outcome := domain.CheckResult{
			Suite:      res.Suite,
			Check:      res.Check,
			Passed:     res.Passed(),
			StatusCode: c.statusFor(res.Check),
			Elapsed:    res.Elapsed,
		}
		if res.Err != nil {
			outcome.Failure = res.Err.Error()
		}
		if _, err := c.fanout.Publish(ctx, sinks.NewResult(runID, outcome)); err != nil {
			c.log.ErrorObj("publish check result failed", "error", err)
		}
	}

	runSummary := domain.RunSummary{
		RunID:    runID,
		Total:    summary.Total,
		Passed:   summary.Passed,
		Failed:   summary.Failed,
		Elapsed:  summary.Elapsed,
		Finished: time.Now().UTC(),
	}
	c.log.InfoObj("run completed", "run_summary", map[string]any{
		"run_id":     runSummary.RunID,
		"total":      runSummary.Total,
		"passed":     runSummary.Passed,
		"failed":     runSummary.Failed,
		"elapsed_ms": runSummary.Elapsed.Milliseconds(),
	})

	return runSummary, nil
}

// Client exposes the configured HTTP client for auxiliary tooling.
func (c *Checker) Client() apiclient.Client { return c.client }

// Registry exposes the loaded endpoint registry.
func (c *Checker) Registry() *endpoints.Registry { return c.registry }

// Close releases sinks holding connections.
func (c *Checker) Close() error {
	if c == nil {
		return nil
	}
	return c.fanout.Close()
}

// buildSuite turns every registry entry into an executable check.
func (c *Checker) buildSuite(endpointList []endpoints.Endpoint) (probe.Suite, error) {
	suite := probe.Suite{Name: "endpoints"}
	for _, ep := range endpointList {
		check, err := c.checkFor(ep)
		if err != nil {
			return probe.Suite{}, err
		}
		suite.Checks = append(suite.Checks, check)
	}
	return suite, nil
}

// checkFor builds one check: expand the path, perform the request, validate
// the response, and record the exchange when the check fails.
func (c *Checker) checkFor(ep endpoints.Endpoint) (probe.Check, error) {
	expect, err := c.expectationFor(ep)
	if err != nil {
		return probe.Check{}, err
	}

	run := func(ctx context.Context, client apiclient.Client) error {
		path, err := ep.Expand(nil)
		if err != nil {
			return err
		}

		resp, err := client.Request(ctx, ep.Method, path)
		if err != nil {
			c.recordTransportFailure(ep, path, err)
			return err
		}
		c.setStatus(ep.Name, resp.StatusCode())

		if err := validate.Response(resp, expect); err != nil {
			c.recordValidationFailure(ep, resp, err)
			return err
		}
		return nil
	}

	return probe.Check{Name: ep.Name, Run: run}, nil
}

// expectationFor translates a registry expect block into validator inputs,
// loading the schema document up front so a missing file fails at startup.
func (c *Checker) expectationFor(ep endpoints.Endpoint) (validate.Expectation, error) {
	if ep.Expect == nil {
		return validate.Expectation{}, nil
	}

	expect := validate.Expectation{
		Status:       ep.Expect.Status,
		MaxElapsed:   time.Duration(ep.Expect.MaxMs) * time.Millisecond,
		RequiredKeys: ep.Expect.RequiredKeys,
		Headers:      ep.Expect.Headers,
	}

	if ep.Expect.SchemaFile != "" {
		schemaPath := ep.Expect.SchemaFile
		if !filepath.IsAbs(schemaPath) {
			schemaPath = filepath.Join(filepath.Dir(c.cfg.EndpointsFile), schemaPath)
		}
		raw, err := os.ReadFile(schemaPath)
		if err != nil {
			return validate.Expectation{}, fmt.Errorf("endpoint %q: read schema file: %w", ep.Name, err)
		}
		expect.Schema = string(raw)
	}

	return expect, nil
}

func (c *Checker) recordTransportFailure(ep endpoints.Endpoint, path string, cause error) {
	c.saveExchange(recorder.Exchange{
		ID:      uuid.NewString(),
		Suite:   "endpoints",
		Check:   ep.Name,
		Method:  ep.Method,
		URL:     path,
		Failure: cause.Error(),
	})
}

func (c *Checker) recordValidationFailure(ep endpoints.Endpoint, resp *apiclient.Response, cause error) {
	c.saveExchange(recorder.Exchange{
		ID:           uuid.NewString(),
		Suite:        "endpoints",
		Check:        ep.Name,
		Method:       resp.Method(),
		URL:          resp.URL(),
		StatusCode:   resp.StatusCode(),
		ResponseBody: resp.Body(),
		Failure:      cause.Error(),
		ElapsedMs:    resp.Elapsed().Milliseconds(),
	})
}

func (c *Checker) saveExchange(ex recorder.Exchange) {
	if err := c.store.SaveExchange(ex); err != nil {
		c.log.ErrorObj("record exchange failed", "error", err)
	}
}

func (c *Checker) setStatus(check string, status int) {
	c.mu.Lock()
	c.statuses[check] = status
	c.mu.Unlock()
}

func (c *Checker) statusFor(check string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[check]
}

// closeStore safely closes the recorder backend, logging any errors encountered.
func (c *Checker) closeStore() {
	if c == nil || c.store == nil {
		return
	}
	if err := c.store.Close(); err != nil {
		c.log.ErrorObj("recorder close failed", "error", err)
	}
}
