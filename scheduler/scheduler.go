// scheduler/scheduler.go
package scheduler

import (
	"fmt"
	"sync"
	"time"

	"fleet-oracle/logs"
)

// TickFunc runs one full pipeline pass. Returning false halts the loop
// before the next cadence fires (the post-trigger shutdown path).
type TickFunc func(tick int64) bool

// Scheduler drives the tick cadence. Ticks are strictly sequential: the loop
// runs in a single goroutine and the next tick cannot begin before the
// previous pipeline has returned.
type Scheduler struct {
	interval time.Duration
	onTick   TickFunc

	mu       sync.Mutex
	running  bool
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
	wg       sync.WaitGroup
}

// New creates a scheduler that invokes onTick every interval.
func New(interval time.Duration, onTick TickFunc) *Scheduler {
	return &Scheduler{
		interval: interval,
		onTick:   onTick,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// Start launches the tick loop. Starting twice is an error.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return fmt.Errorf("scheduler already running")
	}
	s.running = true

	s.wg.Add(1)
	go s.run()
	return nil
}

func (s *Scheduler) run() {
	defer s.wg.Done()
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	var tick int64
	for {
		select {
		case <-s.stopChan:
			logs.Info("Scheduler received stop signal, exiting.")
			return
		case <-ticker.C:
			tick++
			if !s.onTick(tick) {
				logs.Infof("Scheduler halted by tick pipeline after tick %d.", tick)
				return
			}
		}
	}
}

// Stop halts future ticks and waits for the loop goroutine to exit. It is
// idempotent and safe to call whether or not the loop already halted itself.
// It must not be called from inside the tick pipeline; the pipeline halts
// the loop by returning false instead.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	s.wg.Wait()
}

// Done is closed when the tick loop has fully exited, whether stopped
// externally or halted by the pipeline itself.
func (s *Scheduler) Done() <-chan struct{} {
	return s.done
}
