package domain

import "time"

// Domain contains core models shared between the runner, sinks, and recorder.

// CheckResult is the outcome of one executed check.
type CheckResult struct {
	Suite      string
	Check      string
	Passed     bool
	Failure    string
	StatusCode int
	Elapsed    time.Duration
}

// RunSummary aggregates the results of one full run.
type RunSummary struct {
	RunID    string
	Total    int
	Passed   int
	Failed   int
	Elapsed  time.Duration
	Finished time.Time
}
