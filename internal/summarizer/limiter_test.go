package summarizer

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestCallLimiterBoundsSlots(t *testing.T) {
	l := newCallLimiter(2)
	ctx := context.Background()

	r1, err := l.wait(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.wait(ctx); err != nil {
		t.Fatal(err)
	}

	short, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	if _, err := l.wait(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("third wait error = %v, want DeadlineExceeded", err)
	}

	r1()
	if _, err := l.wait(ctx); err != nil {
		t.Errorf("wait after release error = %v", err)
	}
}

func TestCallLimiterCancelledWinsOverFreeSlot(t *testing.T) {
	l := newCallLimiter(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for range 10 {
		if _, err := l.wait(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("wait error = %v, want Canceled", err)
		}
	}
}

func TestCallLimiterMinimumOne(t *testing.T) {
	if got := cap(newCallLimiter(0).slots); got != 1 {
		t.Errorf("capacity = %d, want 1", got)
	}
}
