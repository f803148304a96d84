package ratelimit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestGate_SpacesCalls(t *testing.T) {
	interval := 40 * time.Millisecond
	g := NewGate(interval)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := g.Wait(ctx, "eutils"); err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
	}
	elapsed := time.Since(start)

	// First call is immediate, the next two wait one interval each.
	if min := 2*interval - 5*time.Millisecond; elapsed < min {
		t.Errorf("3 calls took %v, want at least %v", elapsed, min)
	}
}

func TestGate_ConcurrentCallersAreSerialized(t *testing.T) {
	interval := 30 * time.Millisecond
	g := NewGate(interval)
	ctx := context.Background()

	var mu sync.Mutex
	var stamps []time.Time
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := g.Wait(ctx, "eutils"); err != nil {
				t.Errorf("Wait() error = %v", err)
				return
			}
			mu.Lock()
			stamps = append(stamps, time.Now())
			mu.Unlock()
		}()
	}
	wg.Wait()

	var first, last time.Time
	for _, s := range stamps {
		if first.IsZero() || s.Before(first) {
			first = s
		}
		if s.After(last) {
			last = s
		}
	}
	if min := 3*interval - 5*time.Millisecond; last.Sub(first) < min {
		t.Errorf("4 concurrent calls spanned %v, want at least %v", last.Sub(first), min)
	}
}

func TestGate_FamiliesAreIndependent(t *testing.T) {
	g := NewGate(time.Hour)
	ctx := context.Background()

	if err := g.Wait(ctx, "a"); err != nil {
		t.Fatalf("Wait(a) error = %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- g.Wait(ctx, "b") }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait(b) error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait(b) blocked on family a")
	}
}

func TestGate_CancelledContext(t *testing.T) {
	g := NewGate(time.Hour)
	if err := g.Wait(context.Background(), "eutils"); err != nil {
		t.Fatalf("Wait() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// The limiter fails fast when the deadline cannot be met.
	if err := g.Wait(ctx, "eutils"); err == nil {
		t.Fatal("Wait() expected error on short deadline")
	}

	cancelled, cancelNow := context.WithCancel(context.Background())
	cancelNow()
	if err := g.Wait(cancelled, "eutils"); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestNewGate_DefaultInterval(t *testing.T) {
	if got := NewGate(0).Interval(); got != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", got, DefaultInterval)
	}
}
