// Package jsrun executes script source in a fresh, isolated engine session
// per call and reports the result as text.
//
// QuickJS is the default backend; build with -tags v8 for V8.
package jsrun

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/cryguy/jsrun/internal/bridge"
	"github.com/cryguy/jsrun/internal/core"
	"github.com/cryguy/jsrun/internal/transpile"
)

// Engine wraps a backend JS engine (QuickJS by default, V8 with -tags v8).
type Engine struct {
	backend core.EngineBackend
}

type options struct {
	sink     core.Sink
	bindings []bridge.Binding
}

// Option customizes an Engine.
type Option func(*options)

// WithSink routes print and console output to s. Without it output goes
// to the standard logger.
func WithSink(s Sink) Option {
	return func(o *options) { o.sink = s }
}

// WithBinding exposes fn to scripts as a global function called name.
func WithBinding(name string, fn HostFunc) Option {
	return func(o *options) {
		o.bindings = append(o.bindings, bridge.Binding{Name: name, Func: fn})
	}
}

// New creates an Engine. It fails when the binding set is invalid, for
// example when two bindings share a name.
func New(cfg EngineConfig, opts ...Option) (*Engine, error) {
	o := &options{sink: core.LogSink{}}
	for _, opt := range opts {
		opt(o)
	}

	regOpts := []bridge.Option{bridge.WithPrint(), bridge.WithBindings(o.bindings...)}
	if cfg.Console {
		regOpts = append(regOpts, bridge.WithConsole())
	}
	reg, err := bridge.NewRegistry(regOpts...)
	if err != nil {
		return nil, fmt.Errorf("building host bindings: %w", err)
	}

	return &Engine{backend: newBackend(cfg, reg, o.sink)}, nil
}

// DefaultConfig returns the configuration used when none is given.
func DefaultConfig() EngineConfig {
	return EngineConfig{
		ExecutionTimeout: 5000,
		MaxLogEntries:    core.MaxLogEntries,
	}
}

// Init initializes the engine platform. It must succeed before Execute
// can run anything; later calls return the first result.
func (e *Engine) Init() error {
	return e.backend.Init()
}

// Execute runs JavaScript src in a new session.
func (e *Engine) Execute(ctx context.Context, src string) *Outcome {
	return e.backend.Execute(ctx, src)
}

// ExecuteLang runs src after preparing it for lang.
func (e *Engine) ExecuteLang(ctx context.Context, lang Lang, src string) *Outcome {
	js, err := transpile.Source(lang, src)
	if err != nil {
		out := &Outcome{SessionID: uuid.NewString()}
		out.Fail(err)
		return out
	}
	return e.backend.Execute(ctx, js)
}

// Backend names the engine in use.
func (e *Engine) Backend() string {
	return e.backend.Name()
}

// LiveSessions reports how many engine instances are currently allocated.
func (e *Engine) LiveSessions() int64 {
	return e.backend.LiveSessions()
}

// Shutdown waits for running sessions and rejects new ones.
func (e *Engine) Shutdown() {
	e.backend.Shutdown()
}
