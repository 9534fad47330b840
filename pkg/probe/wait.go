package probe

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrConditionNotMet is returned by WaitFor when the condition never held.
var ErrConditionNotMet = errors.New("condition not met within timeout")

// WaitFor polls cond every interval until it returns true, the timeout
// elapses, or the context is cancelled. Condition errors do not abort the
// wait; the last one is attached to the timeout error.
func WaitFor(ctx context.Context, timeout, interval time.Duration, cond func(ctx context.Context) (bool, error)) error {
	if interval <= 0 {
		interval = time.Second
	}

	waitCtx := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var lastErr error
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		ok, err := cond(waitCtx)
		if err != nil {
			lastErr = err
		} else if ok {
			return nil
		}

		select {
		case <-waitCtx.Done():
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", ErrConditionNotMet, lastErr)
			}
			return ErrConditionNotMet
		case <-ticker.C:
		}
	}
}

// Retry calls fn up to attempts times with a fixed delay between attempts,
// returning nil on the first success and the last error otherwise.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if attempt == attempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
