/*
refresh.go - Background refresh cycle

PURPOSE:
  Periodically runs the auto-close sweep so sessions left open past the
  cutoff get closed without anyone pressing a button. The same cycle is
  what admin dashboards poll against, so it can be paused while an edit
  dialog is open and resumed afterwards.

DESIGN:
  - Runs a background goroutine with configurable interval
  - Pause() sets a flag checked at each tick; the ticker keeps firing
    but paused ticks do nothing, so Resume() picks up on the next tick
  - Consecutive sweep failures are counted and escalate the log line
    once they cross a threshold

CONFIGURATION:
  - Interval: How often to run (default: 5 seconds)

USAGE:
  refresh := NewRefreshScheduler(sweeper)
  refresh.Start()
  // ... later
  refresh.Stop()

SEE ALSO:
  - hours/sweep.go: The sweep itself
  - handlers.go: PauseRefresh / ResumeRefresh endpoints
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/clubops/volunteer-hours/hours"
)

// DefaultRefreshInterval matches the polling cadence of the admin UI.
const DefaultRefreshInterval = 5 * time.Second

// failureEscalationThreshold is how many consecutive failed cycles we
// tolerate before the log line switches to an escalated form.
const failureEscalationThreshold = 3

// SweepRunner is the slice of the sweeper the scheduler needs.
type SweepRunner interface {
	Sweep(ctx context.Context, now time.Time) (hours.SweepResult, error)
}

// RefreshScheduler drives the periodic sweep cycle.
type RefreshScheduler struct {
	Sweeper  SweepRunner
	Interval time.Duration

	ticker   *time.Ticker
	stop     chan bool
	wg       sync.WaitGroup
	mu       sync.Mutex
	paused   bool
	failures int
}

// NewRefreshScheduler creates a scheduler with the default interval.
func NewRefreshScheduler(sweeper SweepRunner) *RefreshScheduler {
	return &RefreshScheduler{
		Sweeper:  sweeper,
		Interval: DefaultRefreshInterval,
		stop:     make(chan bool),
	}
}

// Start begins the refresh cycle.
func (rs *RefreshScheduler) Start() {
	rs.mu.Lock()
	defer rs.mu.Unlock()

	rs.ticker = time.NewTicker(rs.Interval)
	rs.wg.Add(1)

	go rs.run(rs.ticker)

	log.Printf("[Refresh] Started with interval: %v", rs.Interval)
}

// Stop stops the refresh cycle and waits for any in-flight sweep to
// finish. The mutex is released before waiting: cycle() takes it too,
// so holding it across the wait would block a cycle that is mid-sweep.
func (rs *RefreshScheduler) Stop() {
	rs.mu.Lock()
	ticker := rs.ticker
	rs.ticker = nil
	rs.mu.Unlock()

	if ticker == nil {
		return
	}

	ticker.Stop()
	close(rs.stop)
	rs.wg.Wait()
	log.Println("[Refresh] Stopped")
}

// Pause suspends sweep cycles until Resume is called.
func (rs *RefreshScheduler) Pause() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.paused = true
	log.Println("[Refresh] Paused")
}

// Resume re-enables sweep cycles.
func (rs *RefreshScheduler) Resume() {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	rs.paused = false
	log.Println("[Refresh] Resumed")
}

// Paused reports whether the cycle is currently suspended.
func (rs *RefreshScheduler) Paused() bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	return rs.paused
}

func (rs *RefreshScheduler) run(ticker *time.Ticker) {
	defer rs.wg.Done()

	// Run immediately on start
	rs.cycle()

	for {
		select {
		case <-ticker.C:
			rs.cycle()
		case <-rs.stop:
			return
		}
	}
}

func (rs *RefreshScheduler) cycle() {
	if rs.Paused() {
		return
	}

	_, err := rs.Sweeper.Sweep(context.Background(), time.Now())

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if err != nil {
		rs.failures++
		if rs.failures >= failureEscalationThreshold {
			log.Printf("[Refresh] Sweep failing for %d consecutive cycles: %v", rs.failures, err)
		} else {
			log.Printf("[Refresh] Sweep failed: %v", err)
		}
		return
	}
	rs.failures = 0
}
