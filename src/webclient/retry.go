package webclient

import (
	"context"
	"time"
)

const maxDelay = 30 * time.Second

// AttemptFunc performs one HTTP attempt and reports the status and body.
type AttemptFunc func() (status int, body []byte, err error)

// DoWithRetry retries the attempt on transport errors, 429 and 5xx, with
// exponential backoff. The last attempt's result is returned as-is so the
// caller can classify it.
func DoWithRetry(ctx context.Context, attempts int, initialDelay time.Duration, fn AttemptFunc) (int, []byte, error) {
	if attempts <= 0 {
		attempts = 1
	}
	if initialDelay <= 0 {
		initialDelay = time.Second
	}
	delay := initialDelay
	var (
		status int
		body   []byte
		err    error
	)
	for i := 0; i < attempts; i++ {
		status, body, err = fn()
		if err == nil && status != 429 && status < 500 {
			return status, body, nil
		}
		if i == attempts-1 {
			break
		}
		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return status, body, ctx.Err()
		case <-t.C:
		}
		if delay < maxDelay {
			delay *= 2
		}
	}
	return status, body, err
}
