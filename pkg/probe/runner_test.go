package probe

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/samvad-hq/samvad-apicheck/pkg/apiclient"
)

// fakeClient satisfies apiclient.Client; checks in these tests drive their
// own logic, so it only records calls.
type fakeClient struct {
	calls atomic.Int32
}

func (f *fakeClient) Request(_ context.Context, _, _ string, _ ...apiclient.RequestOption) (*apiclient.Response, error) {
	f.calls.Add(1)
	return apiclient.NewResponse(200, []byte(`{}`), nil, time.Millisecond, "GET", "http://example.com"), nil
}

func passing(name string) Check {
	return Check{Name: name, Run: func(ctx context.Context, client apiclient.Client) error {
		_, err := client.Request(ctx, "GET", "/ok")
		return err
	}}
}

func failing(name string, err error) Check {
	return Check{Name: name, Run: func(context.Context, apiclient.Client) error { return err }}
}

func TestRunnerRunsAllChecks(t *testing.T) {
	client := &fakeClient{}
	runner := NewRunner(client, 3, nil)

	suites := []Suite{
		{Name: "users", Checks: []Check{passing("list"), passing("by_id")}},
		{Name: "posts", Checks: []Check{passing("list"), failing("broken", errors.New("boom"))}},
	}

	results, summary := runner.Run(context.Background(), suites)
	if summary.Total != 4 || summary.Passed != 3 || summary.Failed != 1 {
		t.Fatalf("summary = %+v", summary)
	}
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	if got := int(client.calls.Load()); got != 3 {
		t.Fatalf("client called %d times, want 3", got)
	}

	var foundFailure bool
	for _, res := range results {
		if res.Check == "broken" {
			foundFailure = true
			if res.Passed() {
				t.Fatalf("broken check reported as passed")
			}
			if res.Suite != "posts" {
				t.Fatalf("failure attributed to suite %q", res.Suite)
			}
		}
	}
	if !foundFailure {
		t.Fatalf("failing check missing from results")
	}
}

func TestRunnerBoundsConcurrency(t *testing.T) {
	var (
		mu      sync.Mutex
		active  int
		maxSeen int
	)

	slow := Check{Name: "slow", Run: func(context.Context, apiclient.Client) error {
		mu.Lock()
		active++
		if active > maxSeen {
			maxSeen = active
		}
		mu.Unlock()

		time.Sleep(20 * time.Millisecond)

		mu.Lock()
		active--
		mu.Unlock()
		return nil
	}}

	checks := make([]Check, 8)
	for i := range checks {
		checks[i] = slow
	}

	runner := NewRunner(&fakeClient{}, 2, nil)
	_, summary := runner.Run(context.Background(), []Suite{{Name: "load", Checks: checks}})
	if summary.Total != 8 || summary.Failed != 0 {
		t.Fatalf("summary = %+v", summary)
	}
	if maxSeen > 2 {
		t.Fatalf("observed %d concurrent checks with 2 workers", maxSeen)
	}
}

func TestRunnerCancelledContextFailsRemainingChecks(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	runner := NewRunner(&fakeClient{}, 1, nil)
	results, summary := runner.Run(ctx, []Suite{{Name: "s", Checks: []Check{passing("a"), passing("b")}}})
	if summary.Failed != 2 {
		t.Fatalf("summary = %+v", summary)
	}
	for _, res := range results {
		if !errors.Is(res.Err, context.Canceled) {
			t.Fatalf("result error = %v", res.Err)
		}
	}
}

func TestWaitForConditionMet(t *testing.T) {
	var polls atomic.Int32
	err := WaitFor(context.Background(), time.Second, 5*time.Millisecond, func(context.Context) (bool, error) {
		return polls.Add(1) >= 3, nil
	})
	if err != nil {
		t.Fatalf("WaitFor: %v", err)
	}
	if polls.Load() < 3 {
		t.Fatalf("condition polled %d times", polls.Load())
	}
}

func TestWaitForTimesOut(t *testing.T) {
	err := WaitFor(context.Background(), 30*time.Millisecond, 5*time.Millisecond, func(context.Context) (bool, error) {
		return false, errors.New("still pending")
	})
	if !errors.Is(err, ErrConditionNotMet) {
		t.Fatalf("expected ErrConditionNotMet, got %v", err)
	}
}

func TestRetryStopsOnFirstSuccess(t *testing.T) {
	var calls atomic.Int32
	err := Retry(context.Background(), 5, time.Millisecond, func(context.Context) error {
		if calls.Add(1) < 3 {
			return errors.New("not yet")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("fn called %d times", calls.Load())
	}
}

func TestRetryReturnsLastError(t *testing.T) {
	wantErr := errors.New("always")
	var calls atomic.Int32
	err := Retry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		calls.Add(1)
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls.Load() != 3 {
		t.Fatalf("fn called %d times, want 3", calls.Load())
	}
}

func TestRunLoadAggregatesLatency(t *testing.T) {
	var calls atomic.Int32
	check := Check{Name: "load", Run: func(context.Context, apiclient.Client) error {
		time.Sleep(2 * time.Millisecond)
		if calls.Add(1)%4 == 0 {
			return errors.New("sporadic")
		}
		return nil
	}}

	report := RunLoad(context.Background(), &fakeClient{}, check, LoadProfile{Requests: 8, Workers: 4})
	if report.Total != 8 {
		t.Fatalf("total = %d", report.Total)
	}
	if report.Failures != 2 {
		t.Fatalf("failures = %d", report.Failures)
	}
	if report.Min <= 0 || report.Max < report.Min || report.Avg < report.Min {
		t.Fatalf("latency stats inconsistent: %+v", report)
	}
}
