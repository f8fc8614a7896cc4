package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/RoamlyAI/roamly-mvp/pkg/fn"
)

// --- Limiter ---

func TestLimiterAllowWithinBurst(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 1, Burst: 3})
	for i := 0; i < 3; i++ {
		if !l.Allow() {
			t.Fatalf("call %d within burst denied", i)
		}
	}
	if l.Allow() {
		t.Fatal("call beyond burst allowed")
	}
}

func TestLimiterRefill(t *testing.T) {
	now := time.Now()
	l := NewLimiter(LimiterOpts{Rate: 10, Burst: 1})
	l.now = func() time.Time { return now }

	if !l.Allow() {
		t.Fatal("first call denied")
	}
	if l.Allow() {
		t.Fatal("bucket should be empty")
	}

	now = now.Add(200 * time.Millisecond) // 2 tokens at rate 10, capped at burst 1
	if !l.Allow() {
		t.Fatal("refill did not happen")
	}
	if l.Allow() {
		t.Fatal("refill exceeded burst cap")
	}
}

func TestLimiterWaitCancelled(t *testing.T) {
	l := NewLimiter(LimiterOpts{Rate: 0.001, Burst: 1})
	l.Allow() // drain

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := l.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

// --- Breaker ---

func TestBreakerTripsAfterThreshold(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 3, Timeout: time.Minute})
	fail := func(context.Context) error { return errors.New("down") }

	for i := 0; i < 3; i++ {
		if err := b.Call(context.Background(), fail); err == nil {
			t.Fatal("expected failure")
		}
	}
	if b.State() != StateOpen {
		t.Fatalf("expected open, got %s", b.State())
	}

	err := b.Call(context.Background(), func(context.Context) error { return nil })
	if !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("open breaker must reject, got %v", err)
	}
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 2, Timeout: time.Minute})
	fail := func(context.Context) error { return errors.New("down") }
	ok := func(context.Context) error { return nil }

	b.Call(context.Background(), fail)
	b.Call(context.Background(), ok)
	b.Call(context.Background(), fail)

	if b.State() != StateClosed {
		t.Fatalf("non-consecutive failures tripped the breaker: %s", b.State())
	}
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Second, HalfOpenMax: 1})
	b.now = func() time.Time { return now }

	b.Call(context.Background(), func(context.Context) error { return errors.New("down") })
	if b.State() != StateOpen {
		t.Fatal("breaker should be open")
	}

	now = now.Add(2 * time.Second)
	if b.State() != StateHalfOpen {
		t.Fatalf("expected half-open after timeout, got %s", b.State())
	}

	if err := b.Call(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("probe call failed: %v", err)
	}
	if b.State() != StateClosed {
		t.Fatalf("successful probe must close the breaker, got %s", b.State())
	}
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	now := time.Now()
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Second})
	b.now = func() time.Time { return now }

	b.Call(context.Background(), func(context.Context) error { return errors.New("down") })
	now = now.Add(2 * time.Second)

	b.Call(context.Background(), func(context.Context) error { return errors.New("still down") })
	if b.State() != StateOpen {
		t.Fatalf("failed probe must reopen, got %s", b.State())
	}
}

func TestCallResult(t *testing.T) {
	b := NewBreaker(BreakerOpts{FailThreshold: 1, Timeout: time.Minute})

	r := CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		return fn.Ok(7)
	})
	if v, err := r.Unwrap(); err != nil || v != 7 {
		t.Fatalf("CallResult = %d, %v", v, err)
	}

	CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		return fn.Errf[int]("down")
	})
	r = CallResult(b, context.Background(), func(context.Context) fn.Result[int] {
		return fn.Ok(1)
	})
	if _, err := r.Unwrap(); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected ErrCircuitOpen, got %v", err)
	}
}
