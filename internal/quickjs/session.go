//go:build !v8

package quickjs

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/cryguy/jsrun/internal/bridge"
	"github.com/cryguy/jsrun/internal/core"
	"modernc.org/quickjs"
)

// session is one QuickJS VM bound to one core.Session. The VM is closed by
// the core.Session's cleanup, never reused.
type session struct {
	vm       *quickjs.VM
	rt       *qjsRuntime
	state    *core.Session
	bytecode []byte
}

// openSession allocates a VM, installs the host bridge and moves state to
// PhaseEnvironmentReady. live counts allocated VMs until state is closed.
func openSession(ctx context.Context, state *core.Session, reg *bridge.Registry, live *atomic.Int64) (*session, error) {
	vm, err := quickjs.NewVM()
	if err != nil {
		return nil, fmt.Errorf("%w: creating QuickJS VM: %v", core.ErrInit, err)
	}
	live.Add(1)
	state.RegisterCleanup(func() {
		vm.Close()
		live.Add(-1)
	})

	rt := &qjsRuntime{vm: vm}
	if err := rt.limitStack(stackSlots); err != nil {
		return nil, fmt.Errorf("%w: limiting stack: %v", core.ErrInit, err)
	}
	if err := bridge.Install(ctx, rt, reg, state); err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrInit, err)
	}
	if err := state.Advance(core.PhaseEnvironmentReady); err != nil {
		return nil, err
	}
	return &session{vm: vm, rt: rt, state: state}, nil
}

// compile parses src as a global script into bytecode without running
// any of it. Syntax errors come back wrapped with core.CompileFault.
func (s *session) compile(src string) error {
	if err := s.state.Expect(core.PhaseEnvironmentReady); err != nil {
		return err
	}
	bc, err := s.vm.Compile(src, quickjs.EvalGlobal)
	if err != nil {
		return core.CompileFault(err)
	}
	s.bytecode = bc
	return s.state.Advance(core.PhaseCompiled)
}

// run executes the compiled bytecode and stringifies its completion value.
// Script exceptions come back wrapped with core.RuntimeFault. A positive
// budget becomes QuickJS's own time limit for the run, since starting an
// eval clears any interrupt delivered before it.
func (s *session) run(budget time.Duration) (string, error) {
	if err := s.state.Expect(core.PhaseCompiled); err != nil {
		return "", err
	}
	if budget > 0 {
		s.vm.SetEvalTimeout(budget)
	}
	v, err := s.vm.EvalBytecodeValue(s.bytecode)
	if err != nil {
		return "", core.RuntimeFault(err)
	}
	text, err := s.stringify(v)
	v.Free()
	if err != nil {
		return "", err
	}
	if err := s.state.Advance(core.PhaseExecuted); err != nil {
		return "", err
	}
	return core.ValidText(text), nil
}

// stringify hands v to the conversion function as an argument rather than
// through a global, so a frozen or trapped global object cannot interfere.
func (s *session) stringify(v quickjs.Value) (string, error) {
	out, err := s.vm.Call(core.StringifyFuncJS, v)
	if err != nil {
		return "", core.RuntimeFault(err)
	}
	if text, ok := out.(string); ok {
		return text, nil
	}
	return fmt.Sprint(out), nil
}
