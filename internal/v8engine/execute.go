//go:build v8

package v8engine

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

// Engine executes scripts on V8, one fresh isolate per call.
type Engine struct {
	config   core.EngineConfig
	registry *bridge.Registry
	sink     core.Sink
	platform *core.Platform

	live     atomic.Int64
	mu       sync.RWMutex
	closed   bool
	inflight sync.WaitGroup
}

var _ core.EngineBackend = (*Engine)(nil)

// NewEngine creates an Engine. cfg.V8Flags are honored only by the first
// Engine in the process.
func NewEngine(cfg core.EngineConfig, reg *bridge.Registry, sink core.Sink) *Engine {
	return &Engine{
		config:   cfg,
		registry: reg,
		sink:     sink,
		platform: getPlatform(cfg.V8Flags),
	}
}

func (e *Engine) Name() string { return "v8" }

// Init initializes the V8 platform once per process.
func (e *Engine) Init() error { return e.platform.Init() }

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

// Execute compiles and runs src in a new isolate and returns exactly one
// outcome. The isolate is disposed before Execute returns on every path.
func (e *Engine) Execute(ctx context.Context, src string) (out *core.Outcome) {
	start := time.Now()
	state := core.NewSession(e.sink, e.config.LogLimit())
	out = &core.Outcome{SessionID: state.ID}
	defer func() { out.Duration = time.Since(start) }()

	if err := e.platform.Ready(); err != nil {
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

	// TerminateExecution is the one isolate call that is safe from
	// another goroutine.
	wd := core.StartWatchdog(ctx, e.config.Timeout(), sess.iso.TerminateExecution)
	defer func() {
		wd.Stop()
		if r := recover(); r != nil {
			log.Printf("jsrun: v8 session %s panicked: %v", state.ID, r)
			core.Settle(out, state, core.PhaseRuntimeFailed, core.RuntimeFault(fmt.Errorf("engine panic: %v", r)), wd.Fired())
		}
		state.Close()
		out.Logs = state.Logs()
	}()

	if err := sess.compile(src); err != nil {
		core.Settle(out, state, core.PhaseCompileFailed, err, wd.Fired())
		return out
	}

	text, err := sess.run()
	if err != nil {
		core.Settle(out, state, core.PhaseRuntimeFailed, err, wd.Fired())
		return out
	}

	out.Kind = core.Success
	out.Text = text
	return out
}
