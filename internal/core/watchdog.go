package core

import (
	"context"
	"sync"
	"time"
)

// Watchdog interrupts a running substrate when the execution timeout
// elapses or the caller's context is done, whichever comes first.
// interrupt is never called after Stop has returned.
type Watchdog struct {
	mu        sync.Mutex
	stopped   bool
	fired     bool
	interrupt func()
	timer     *time.Timer
	stopCtx   func() bool
}

// StartWatchdog arms a watchdog. A zero timeout leaves only the context
// as a trigger.
func StartWatchdog(ctx context.Context, timeout time.Duration, interrupt func()) *Watchdog {
	w := &Watchdog{interrupt: interrupt}
	if timeout > 0 {
		w.timer = time.AfterFunc(timeout, w.fire)
	}
	w.stopCtx = context.AfterFunc(ctx, w.fire)
	return w
}

func (w *Watchdog) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped || w.fired {
		return
	}
	w.fired = true
	w.interrupt()
}

// Fired reports whether the interrupt was delivered.
func (w *Watchdog) Fired() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fired
}

// Stop disarms the watchdog.
func (w *Watchdog) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.stopCtx()
}
