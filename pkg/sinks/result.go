package sinks

import (
	"time"

	"github.com/samvad-hq/samvad-apicheck/internal/domain"
)

// Result represents the payload published downstream for one executed check.
type Result struct {
	RunID       string    `json:"run_id"`
	Suite       string    `json:"suite"`
	Check       string    `json:"check"`
	Passed      bool      `json:"passed"`
	Failure     string    `json:"failure,omitempty"`
	StatusCode  int       `json:"status_code,omitempty"`
	ElapsedMs   int64     `json:"elapsed_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewResult constructs a Result for the given run + check outcome.
func NewResult(runID string, res domain.CheckResult) Result {
	return Result{
		RunID:       runID,
		Suite:       res.Suite,
		Check:       res.Check,
		Passed:      res.Passed,
		Failure:     res.Failure,
		StatusCode:  res.StatusCode,
		ElapsedMs:   res.Elapsed.Milliseconds(),
		CompletedAt: time.Now().UTC(),
	}
}
