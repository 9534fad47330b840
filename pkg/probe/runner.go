package probe

import (
	"context"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-apicheck/pkg/apiclient"
)

// Package probe executes checks against an API through a bounded worker pool.
// Checks are independent: each owns its Response and shares nothing mutable
// with its siblings.

// Logger is the logging surface the runner relies on.
type Logger interface {
	InfoObj(msg, key string, obj interface{})
	DebugObj(msg, key string, obj interface{})
	WarnObj(msg, key string, obj interface{})
	ErrorObj(msg, key string, obj interface{})
}

type noopLogger struct{}

func (noopLogger) InfoObj(string, string, interface{})  {}
func (noopLogger) DebugObj(string, string, interface{}) {}
func (noopLogger) WarnObj(string, string, interface{})  {}
func (noopLogger) ErrorObj(string, string, interface{}) {}

func ensureLogger(log Logger) Logger {
	if log == nil {
		return noopLogger{}
	}
	return log
}

// Check is one executable probe. Run returns nil when the check passed;
// validation failures surface as the validator's error and are never retried.
type Check struct {
	Name string
	Run  func(ctx context.Context, client apiclient.Client) error
}

// Suite groups related checks under a name.
type Suite struct {
	Name   string
	Checks []Check
}

// Result is the outcome of one executed check.
type Result struct {
	Suite   string
	Check   string
	Err     error
	Elapsed time.Duration
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Summary aggregates a run.
type Summary struct {
	Total   int
	Passed  int
	Failed  int
	Elapsed time.Duration
}

// Runner executes suites against one client with a fixed number of workers.
type Runner struct {
	client  apiclient.Client
	workers int
	log     Logger
}

// NewRunner builds a runner. workers below 1 is clamped to 1.
func NewRunner(client apiclient.Client, workers int, log Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{client: client, workers: workers, log: ensureLogger(log)}
}

type job struct {
	suite string
	check Check
}

// Run executes every check of every suite and returns per-check results plus
// a summary. A cancelled context marks the remaining checks failed with the
// context error.
func (r *Runner) Run(ctx context.Context, suites []Suite) ([]Result, Summary) {
	if r == nil || len(suites) == 0 {
		return nil, Summary{}
	}

	start := time.Now()
	jobs := make(chan job)
	resultCh := make(chan Result)

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				resultCh <- r.runOne(ctx, j)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, suite := range suites {
			for _, check := range suite.Checks {
				jobs <- job{suite: suite.Name, check: check}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var results []Result
	for res := range resultCh {
		results = append(results, res)
	}

	summary := Summary{Total: len(results), Elapsed: time.Since(start)}
	for _, res := range results {
		if res.Passed() {
			summary.Passed++
		} else {
			summary.Failed++
		}
	}
	return results, summary
}

func (r *Runner) runOne(ctx context.Context, j job) Result {
	if err := ctx.Err(); err != nil {
		return Result{Suite: j.suite, Check: j.check.Name, Err: err}
	}

	start := time.Now()
	err := j.check.Run(ctx, r.client)
	elapsed := time.Since(start)

	if err != nil {
		r.log.WarnObj("check failed", "check_result", map[string]any{
			"suite":      j.suite,
			"check":      j.check.Name,
			"error":      err.Error(),
			"elapsed_ms": elapsed.Milliseconds(),
		})
	} else {
		r.log.InfoObj("check passed", "check_result", map[string]any{
			"suite":      j.suite,
			"check":      j.check.Name,
			"elapsed_ms": elapsed.Milliseconds(),
		})
	}

	return Result{Suite: j.suite, Check: j.check.Name, Err: err, Elapsed: elapsed}
}
