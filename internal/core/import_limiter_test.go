package core

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestImportLimiter_AcquireRelease(t *testing.T) {
	l := NewImportLimiter(2, time.Second)
	ctx := context.Background()

	if s := l.Status(); s.Active != 0 || s.Available != 2 || s.MaxConcurrent != 2 {
		t.Fatalf("initial status = %+v", s)
	}

	for i := 0; i < 2; i++ {
		if err := l.Acquire(ctx); err != nil {
			t.Fatalf("Acquire #%d: %v", i+1, err)
		}
	}
	if s := l.Status(); s.Active != 2 || s.Available != 0 {
		t.Errorf("full status = %+v", s)
	}

	l.Release()
	l.Release()
	if s := l.Status(); s.Active != 0 || s.Available != 2 {
		t.Errorf("drained status = %+v", s)
	}
}

func TestImportLimiter_TimesOutWhenFull(t *testing.T) {
	l := NewImportLimiter(1, 50*time.Millisecond)
	if !l.TryAcquire() {
		t.Fatal("TryAcquire on empty limiter failed")
	}
	defer l.Release()

	if l.TryAcquire() {
		t.Fatal("TryAcquire on full limiter succeeded")
	}

	start := time.Now()
	err := l.Acquire(context.Background())
	if !errors.Is(err, ErrTooManyUploads) {
		t.Fatalf("Acquire = %v, want ErrTooManyUploads", err)
	}
	if elapsed := time.Since(start); elapsed < 40*time.Millisecond {
		t.Errorf("gave up after %v", elapsed)
	}
}

func TestImportLimiter_ContextCancelled(t *testing.T) {
	l := NewImportLimiter(1, time.Minute)
	l.TryAcquire()
	defer l.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Acquire(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Acquire = %v, want context.Canceled", err)
	}
}

func TestImportLimiter_NeverExceedsMax(t *testing.T) {
	const max = 3
	l := NewImportLimiter(max, time.Second)

	var current, peak atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 12; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := l.Acquire(context.Background()); err != nil {
				t.Errorf("Acquire: %v", err)
				return
			}
			defer l.Release()

			n := current.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			current.Add(-1)
		}()
	}
	wg.Wait()

	if p := peak.Load(); p > max {
		t.Errorf("peak concurrency %d exceeds %d", p, max)
	}
	if a := l.Status().Active; a != 0 {
		t.Errorf("Active = %d after all released", a)
	}
}

func TestImportLimiter_WaitForDrain(t *testing.T) {
	l := NewImportLimiter(2, time.Second)

	if err := l.WaitForDrain(context.Background()); err != nil {
		t.Fatalf("idle limiter: %v", err)
	}

	l.TryAcquire()
	go func() {
		time.Sleep(20 * time.Millisecond)
		l.Release()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := l.WaitForDrain(ctx); err != nil {
		t.Fatalf("WaitForDrain: %v", err)
	}

	l.TryAcquire()
	defer l.Release()
	short, cancel2 := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel2()
	if err := l.WaitForDrain(short); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("WaitForDrain with busy slot = %v, want deadline exceeded", err)
	}
}
