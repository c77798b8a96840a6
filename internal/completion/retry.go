package completion

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/nguyentantai21042004/tldr-flow/internal/logger"
)

const maxBackoff = 30 * time.Second

// Backoff returns a duration for attempt n (0-indexed) with jitter. The base
// doubles per attempt and is capped at 30s before shifting so large attempt
// counts cannot overflow.
func Backoff(attempt int) time.Duration {
	base := maxBackoff
	if attempt < 0 {
		attempt = 0
	}
	if attempt < 5 {
		base = time.Duration(1<<uint(attempt)) * time.Second
	}
	jitter := time.Duration(rand.Int64N(int64(base) / 2))
	return base + jitter
}

type retrying struct {
	next       Completer
	maxRetries int
	logger     logger.Logger
	sleep      func(ctx context.Context, d time.Duration) error
}

// WithRetry retries retryable failures of next up to maxRetries times.
// maxRetries <= 0 returns next unchanged.
func WithRetry(next Completer, maxRetries int, log logger.Logger) Completer {
	if maxRetries <= 0 {
		return next
	}
	return &retrying{
		next:       next,
		maxRetries: maxRetries,
		logger:     log,
		sleep:      sleepCtx,
	}
}

func (r *retrying) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= r.maxRetries; attempt++ {
		text, err := r.next.Complete(ctx, prompt)
		if err == nil {
			return text, nil
		}
		if !IsRetryable(err) || attempt == r.maxRetries {
			return "", err
		}
		lastErr = err

		wait := Backoff(attempt)
		r.logger.Warn(ctx, "Completion attempt %d failed, retrying in %s: %v", attempt+1, wait, err)
		if err := r.sleep(ctx, wait); err != nil {
			return "", err
		}
	}
	return "", lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
