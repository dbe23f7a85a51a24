package scheduler

import (
	"context"
	"fmt"
	"log"
	"time"
)

// RunFunc performs one scrape. A browser is created on demand inside each
// call and released before it returns.
type RunFunc func(ctx context.Context) error

// Scheduler repeats a run on a fixed interval
type Scheduler struct {
	interval time.Duration
	run      RunFunc
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a new scheduler. The context bounds every run.
func NewScheduler(ctx context.Context, interval time.Duration, run RunFunc) (*Scheduler, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("schedule interval must be positive, got %v", interval)
	}
	ctx, cancel := context.WithCancel(ctx)

	return &Scheduler{
		interval: interval,
		run:      run,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}, nil
}

// Start starts the scheduler in a goroutine
func (s *Scheduler) Start() {
	go s.loop()
}

// Stop stops the scheduler and waits for the current run to return
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.done
	log.Println("Scheduler stopped")
}

// Wait blocks until the scheduler's context is cancelled
func (s *Scheduler) Wait() {
	<-s.done
}

// loop runs once immediately and then on every tick
func (s *Scheduler) loop() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.runOnce()
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.runOnce()
		}
	}
}

func (s *Scheduler) runOnce() {
	if s.ctx.Err() != nil {
		return
	}
	started := time.Now()
	log.Println("Starting scheduled run")
	if err := s.run(s.ctx); err != nil {
		log.Printf("Error in scheduled run: %v\n", err)
		return
	}
	log.Printf("Scheduled run finished in %v, next run in %v\n", time.Since(started).Round(time.Second), s.interval)
}
