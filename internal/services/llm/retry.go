package llm

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type retryPolicy struct {
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	sleeper     func(time.Duration)
}

func defaultRetryPolicy() retryPolicy {
	return retryPolicy{maxAttempts: 5, baseDelay: time.Second, maxDelay: 10 * time.Second}
}

// do runs attempt until it succeeds, returns a permanent error, or the
// attempt budget is spent.
func (p retryPolicy) do(ctx context.Context, op string, attempt func() error) error {
	attempts := max(p.maxAttempts, 1)
	var lastErr error
	for n := 1; n <= attempts; n++ {
		err := attempt()
		if err == nil {
			return nil
		}
		delay, retry := p.delayFor(ctx, err, n)
		if !retry || n == attempts {
			if n > 1 {
				return fmt.Errorf("%s: failed after %d attempts: %w", op, n, err)
			}
			return err
		}
		if err := p.sleep(ctx, delay); err != nil {
			return err
		}
		lastErr = err
	}
	return fmt.Errorf("%s: failed after %d attempts: %w", op, attempts, lastErr)
}

func (p retryPolicy) delayFor(ctx context.Context, err error, attempt int) (time.Duration, bool) {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return 0, false
	}
	var empty *emptyContentError
	if errors.As(err, &empty) {
		return p.backoff(attempt), true
	}
	var status *httpStatusError
	if errors.As(err, &status) {
		if status.StatusCode != http.StatusRequestTimeout &&
			status.StatusCode != http.StatusTooManyRequests &&
			status.StatusCode < http.StatusInternalServerError {
			return 0, false
		}
		if status.RetryAfter > 0 {
			return p.clamp(status.RetryAfter), true
		}
		return p.backoff(attempt), true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return p.backoff(attempt), true
	}
	return 0, false
}

// backoff doubles from baseDelay per attempt: 1 -> base, 2 -> 2*base, 3 -> 4*base.
func (p retryPolicy) backoff(attempt int) time.Duration {
	if p.baseDelay <= 0 {
		return 0
	}
	delay := p.baseDelay
	for i := 1; i < attempt; i++ {
		if p.maxDelay > 0 && delay > p.maxDelay/2 {
			return p.maxDelay
		}
		delay *= 2
	}
	return p.clamp(delay)
}

func (p retryPolicy) clamp(delay time.Duration) time.Duration {
	if delay < 0 {
		return 0
	}
	if p.maxDelay > 0 && delay > p.maxDelay {
		return p.maxDelay
	}
	return delay
}

func (p retryPolicy) sleep(ctx context.Context, delay time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if delay <= 0 {
		return nil
	}
	if p.sleeper != nil {
		p.sleeper(delay)
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		if delay := time.Until(when); delay >= 0 {
			return delay, true
		}
	}
	return 0, false
}
