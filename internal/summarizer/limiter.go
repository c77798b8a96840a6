package summarizer

import "context"

// callLimiter bounds how many chunk completions are in flight at once.
type callLimiter struct {
	slots chan struct{}
}

func newCallLimiter(n int) *callLimiter {
	if n < 1 {
		n = 1
	}
	return &callLimiter{slots: make(chan struct{}, n)}
}

// wait blocks until a call slot frees up and returns the func that gives it
// back. A cancelled ctx wins over a free slot so no chunk is dispatched
// after the run has failed.
func (l *callLimiter) wait(ctx context.Context) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	select {
	case l.slots <- struct{}{}:
		return func() { <-l.slots }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
