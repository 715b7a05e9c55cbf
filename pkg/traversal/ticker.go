package traversal

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Ticker drives Step on a fixed interval while the run is in running
// mode. Unlike a free-running timer it stops deterministically: the
// loop exits as soon as the run pauses, resets, or the frontier
// drains, rather than firing harmlessly until cleanup.
type Ticker struct {
	run      *Run
	interval time.Duration
	onStep   func(Snapshot)

	mu     sync.Mutex
	active bool
}

// NewTicker creates a ticker for run. onStep, if non-nil, is invoked
// with a snapshot after each committed step.
func NewTicker(run *Run, interval time.Duration, onStep func(Snapshot)) *Ticker {
	return &Ticker{
		run:      run,
		interval: interval,
		onStep:   onStep,
	}
}

// Kick starts the stepping loop if the run is in running mode and no
// loop is already active. Safe to call after every toggle/start; it
// no-ops when there is nothing to do.
func (t *Ticker) Kick(ctx context.Context) {
	if t.run.Mode() != ModeRunning {
		return
	}

	t.mu.Lock()
	if t.active {
		t.mu.Unlock()
		return
	}
	t.active = true
	t.mu.Unlock()

	go t.loop(ctx)
}

// Active reports whether a stepping loop is currently live.
func (t *Ticker) Active() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.active
}

func (t *Ticker) loop(ctx context.Context) {
	defer func() {
		t.mu.Lock()
		t.active = false
		t.mu.Unlock()
	}()

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	slog.Debug("ticker started", "interval", t.interval)

	for {
		select {
		case <-ctx.Done():
			slog.Debug("ticker stopping", "reason", "context cancelled")
			return
		case <-ticker.C:
			if t.run.Mode() != ModeRunning {
				slog.Debug("ticker stopping", "reason", "run not running")
				return
			}
			if t.run.Step() && t.onStep != nil {
				t.onStep(t.run.Snapshot())
			}
			if t.run.Done() {
				slog.Debug("ticker stopping", "reason", "frontier drained")
				return
			}
		}
	}
}
