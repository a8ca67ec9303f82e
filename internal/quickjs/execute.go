//go:build !v8

package quickjs

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cryguy/jsrun/internal/bridge"
	"github.com/cryguy/jsrun/internal/core"
)

// Engine executes scripts on QuickJS, one fresh VM per call.
type Engine struct {
	config   core.EngineConfig
	registry *bridge.Registry
	sink     core.Sink

	live     atomic.Int64
	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

var _ core.EngineBackend = (*Engine)(nil)

// NewEngine creates an Engine. reg must not be nil; sink may be.
func NewEngine(cfg core.EngineConfig, reg *bridge.Registry, sink core.Sink) *Engine {
	return &Engine{config: cfg, registry: reg, sink: sink}
}

// Name returns "quickjs".
func (e *Engine) Name() string { return "quickjs" }

// Init initializes the QuickJS platform once per process.
func (e *Engine) Init() error { return platform.Init() }

// LiveSessions reports how many VMs are currently allocated.
func (e *Engine) LiveSessions() int64 { return e.live.Load() }

// Shutdown rejects new sessions and waits for running ones to finish.
func (e *Engine) Shutdown() {
	e.mu.Lock()
	e.closed = true
	e.mu.Unlock()
	e.inflight.Wait()
}

func (e *Engine) enter() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return false
	}
	e.inflight.Add(1)
	return true
}

// Execute compiles and runs src in a new VM and returns exactly one
// outcome. The VM is closed before Execute returns on every path.
func (e *Engine) Execute(ctx context.Context, src string) (out *core.Outcome) {
	start := time.Now()
	state := core.NewSession(e.sink, e.config.LogLimit())
	out = &core.Outcome{SessionID: state.ID}
	defer func() { out.Duration = time.Since(start) }()

	if err := platform.Ready(); err != nil {
		out.Fail(err)
		return out
	}
	if !e.enter() {
		out.Fail(core.ErrShutdown)
		return out
	}
	defer e.inflight.Done()

	if ctx.Err() != nil {
		out.Fail(core.ErrTimeout)
		return out
	}

	sess, err := openSession(ctx, state, e.registry, &e.live)
	if err != nil {
		state.Close()
		out.Fail(err)
		return out
	}

	wd := core.StartWatchdog(ctx, e.config.Timeout(), sess.vm.Interrupt)
	defer func() {
		wd.Stop()
		if r := recover(); r != nil {
			log.Printf("jsrun: quickjs session %s panicked: %v", state.ID, r)
			core.Settle(out, state, core.PhaseRuntimeFailed, core.RuntimeFault(fmt.Errorf("engine panic: %v", r)), wd.Fired())
		}
		state.Close()
		out.Logs = state.Logs()
	}()

	timeout := e.config.Timeout()
	expired := func() bool {
		return wd.Fired() || (timeout > 0 && time.Since(start) >= timeout)
	}

	if err := sess.compile(src); err != nil {
		core.Settle(out, state, core.PhaseCompileFailed, err, expired())
		return out
	}
	if expired() {
		core.Settle(out, state, core.PhaseRuntimeFailed, core.ErrTimeout, true)
		return out
	}

	var budget time.Duration
	if timeout > 0 {
		budget = timeout - time.Since(start)
	}
	text, err := sess.run(budget)
	if err != nil {
		core.Settle(out, state, core.PhaseRuntimeFailed, err, expired())
		return out
	}

	out.Kind = core.Success
	out.Text = text
	return out
}
