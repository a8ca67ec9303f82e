//go:build v8

package v8engine

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/cryguy/jsrun/internal/bridge"
	"github.com/cryguy/jsrun/internal/core"
	v8 "github.com/tommie/v8go"
)

// session is one isolate and context bound to one core.Session.
type session struct {
	iso    *v8.Isolate
	ctx    *v8.Context
	rt     *v8Runtime
	state  *core.Session
	script *v8.UnboundScript
}

func openSession(ctx context.Context, state *core.Session, reg *bridge.Registry, live *atomic.Int64) (*session, error) {
	iso := v8.NewIsolate()
	jsCtx := v8.NewContext(iso)
	live.Add(1)
	state.RegisterCleanup(func() {
		jsCtx.Close()
		iso.Dispose()
		live.Add(-1)
	})

	rt := &v8Runtime{iso: iso, ctx: jsCtx}
	if err := bridge.Install(ctx, rt, reg, state); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInit, err)
	}
	if err := state.Advance(core.PhaseEnvironmentReady); err != nil {
		return nil, err
	}
	return &session{iso: iso, ctx: jsCtx, rt: rt, state: state}, nil
}

func (s *session) compile(src string) error {
	if err := s.state.Expect(core.PhaseEnvironmentReady); err != nil {
		return err
	}
	script, err := s.iso.CompileUnboundScript(src, "script.js", v8.CompileOptions{})
	if err != nil {
		return core.CompileFault(err)
	}
	s.script = script
	return s.state.Advance(core.PhaseCompiled)
}

func (s *session) run() (string, error) {
	if err := s.state.Expect(core.PhaseCompiled); err != nil {
		return "", err
	}
	val, err := s.script.Run(s.ctx)
	if err != nil {
		return "", core.RuntimeFault(err)
	}
	text, err := s.stringify(val)
	if err != nil {
		return "", err
	}
	if err := s.state.Advance(core.PhaseExecuted); err != nil {
		return "", err
	}
	return core.ValidText(text), nil
}

// stringify passes val straight to the conversion function, so a frozen or
// trapped global object cannot get in the way.
func (s *session) stringify(val *v8.Value) (string, error) {
	fnVal, err := s.ctx.RunScript(core.StringifyFuncJS, "stringify.js")
	if err != nil {
		return "", fmt.Errorf("loading stringifier: %w", err)
	}
	fn, err := fnVal.AsFunction()
	if err != nil {
		return "", fmt.Errorf("loading stringifier: %w", err)
	}
	out, err := fn.Call(v8.Undefined(s.iso), val)
	if err != nil {
		return "", core.RuntimeFault(err)
	}
	return out.String(), nil
}
