package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestNewSchedulerRejectsBadInterval(t *testing.T) {
	if _, err := NewScheduler(context.Background(), 0, func(context.Context) error { return nil }); err == nil {
		t.Error("expected error for zero interval")
	}
}

func TestSchedulerRunsImmediatelyAndOnTicks(t *testing.T) {
	var runs atomic.Int32
	reached := make(chan struct{})

	s, err := NewScheduler(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		if runs.Add(1) == 3 {
			close(reached)
		}
		if runs.Load()%2 == 0 {
			return errors.New("listing unavailable")
		}
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	s.Start()
	select {
	case <-reached:
	case <-time.After(2 * time.Second):
		t.Fatalf("expected 3 runs, got %d", runs.Load())
	}
	s.Stop()

	after := runs.Load()
	time.Sleep(30 * time.Millisecond)
	if runs.Load() != after {
		t.Errorf("scheduler kept running after Stop")
	}
}

func TestSchedulerStopsWithParentContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s, err := NewScheduler(ctx, time.Hour, func(ctx context.Context) error {
		cancel()
		return ctx.Err()
	})
	if err != nil {
		t.Fatal(err)
	}

	s.Start()
	done := make(chan struct{})
	go func() {
		s.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after the context was cancelled")
	}
}
