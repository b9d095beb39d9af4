package main

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/online-loan-project/jorngka-backend/internal/infrastructure/metrics"
)

type stubSweepLock struct {
	mu       sync.Mutex
	acquired bool
	acquires int
	releases int
}

func (s *stubSweepLock) Acquire(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.acquires++
	return s.acquired, nil
}

func (s *stubSweepLock) Release(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releases++
	return nil
}

var testMetrics = metrics.New()

func TestRunSweepExecutesWhenLockAcquired(t *testing.T) {
	lock := &stubSweepLock{acquired: true}
	ctx, cancel := context.WithCancel(context.Background())

	ran := make(chan struct{})
	done := make(chan struct{})
	go func() {
		runSweep(ctx, "late", 10*time.Millisecond, lock, testMetrics, func(context.Context) (int, error) {
			select {
			case ran <- struct{}{}:
			default:
			}
			return 2, nil
		})
		close(done)
	}()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("sweep did not run")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runSweep did not stop on context cancel")
	}

	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.acquires == 0 {
		t.Fatal("expected lock to be acquired")
	}
	if lock.releases == 0 {
		t.Fatal("expected lock to be released")
	}
}

func TestRunSweepSkipsWhenLockHeld(t *testing.T) {
	lock := &stubSweepLock{acquired: false}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	ranCount := 0

	done := make(chan struct{})
	go func() {
		runSweep(ctx, "upcoming", 10*time.Millisecond, lock, testMetrics, func(context.Context) (int, error) {
			mu.Lock()
			ranCount++
			mu.Unlock()
			return 0, errors.New("should not run")
		})
		close(done)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if ranCount != 0 {
		t.Fatalf("expected sweep to be skipped, ran %d times", ranCount)
	}

	lock.mu.Lock()
	defer lock.mu.Unlock()
	if lock.releases != 0 {
		t.Fatal("expected no release when lock not acquired")
	}
}
