package probe

import (
	"context"
	"sync"
	"time"

	"github.com/samvad-hq/samvad-apicheck/pkg/apiclient"
)

// LoadProfile describes a load run: how many requests and how many workers
// issue them.
type LoadProfile struct {
	Requests int
	Workers  int
}

// LoadReport aggregates latency over a load run.
type LoadReport struct {
	Total    int
	Failures int
	Min      time.Duration
	Avg      time.Duration
	Max      time.Duration
	Elapsed  time.Duration
}

// RunLoad executes the check profile.Requests times across profile.Workers
// workers and reports latency. Each invocation owns its own Response.
func RunLoad(ctx context.Context, client apiclient.Client, check Check, profile LoadProfile) LoadReport {
	if profile.Requests < 1 {
		profile.Requests = 1
	}
	if profile.Workers < 1 {
		profile.Workers = 1
	}

	start := time.Now()
	jobs := make(chan struct{})

	var (
		mu       sync.Mutex
		total    time.Duration
		report   = LoadReport{}
		recorded bool
	)

	var wg sync.WaitGroup
	for i := 0; i < profile.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				if ctx.Err() != nil {
					mu.Lock()
					report.Total++
					report.Failures++
					mu.Unlock()
					continue
				}

				callStart := time.Now()
				err := check.Run(ctx, client)
				elapsed := time.Since(callStart)

				mu.Lock()
				report.Total++
				if err != nil {
					report.Failures++
				}
				total += elapsed
				if !recorded || elapsed < report.Min {
					report.Min = elapsed
				}
				if elapsed > report.Max {
					report.Max = elapsed
				}
				recorded = true
				mu.Unlock()
			}
		}()
	}

	for i := 0; i < profile.Requests; i++ {
		jobs <- struct{}{}
	}
	close(jobs)
	wg.Wait()

	if report.Total > 0 {
		report.Avg = total / time.Duration(report.Total)
	}
	report.Elapsed = time.Since(start)
	return report
}
