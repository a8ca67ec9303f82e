package core

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestPlatformInitRunsOnce(t *testing.T) {
	var calls atomic.Int32
	p := NewPlatform("test", func() error {
		calls.Add(1)
		return nil
	})

	if err := p.Ready(); !errors.Is(err, ErrNotInitialized) {
		t.Fatalf("Ready before Init: err = %v, want ErrNotInitialized", err)
	}

	done := make(chan struct{})
	for i := 0; i < 8; i++ {
		go func() {
			_ = p.Init()
			done <- struct{}{}
		}()
	}
	for i := 0; i < 8; i++ {
		<-done
	}

	if got := calls.Load(); got != 1 {
		t.Errorf("init ran %d times, want 1", got)
	}
	if err := p.Ready(); err != nil {
		t.Errorf("Ready after Init: %v", err)
	}
}

func TestPlatformInitFailureSticks(t *testing.T) {
	p := NewPlatform("broken", func() error { return errors.New("no memory") })
	if err := p.Init(); err == nil {
		t.Fatal("expected init error")
	}
	if err := p.Init(); err == nil {
		t.Fatal("second Init should report the same failure")
	}
	if err := p.Ready(); err == nil {
		t.Error("Ready should fail after a failed init")
	}
}

func TestPlatformInitRecoversPanic(t *testing.T) {
	p := NewPlatform("panicky", func() error { panic("boom") })
	if err := p.Init(); err == nil {
		t.Fatal("expected error from panicking init")
	}
}

func TestWatchdogFiresOnTimeout(t *testing.T) {
	fired := make(chan struct{}, 1)
	w := StartWatchdog(context.Background(), 10*time.Millisecond, func() { fired <- struct{}{} })
	defer w.Stop()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not fire")
	}
	if !w.Fired() {
		t.Error("Fired() = false after interrupt")
	}
}

func TestWatchdogFiresOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fired := make(chan struct{}, 1)
	w := StartWatchdog(ctx, 0, func() { fired <- struct{}{} })
	defer w.Stop()

	cancel()
	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("watchdog did not fire on cancel")
	}
}

func TestWatchdogStopPreventsInterrupt(t *testing.T) {
	var calls atomic.Int32
	w := StartWatchdog(context.Background(), 20*time.Millisecond, func() { calls.Add(1) })
	w.Stop()
	time.Sleep(50 * time.Millisecond)
	if calls.Load() != 0 {
		t.Error("interrupt called after Stop")
	}
	if w.Fired() {
		t.Error("Fired() = true after Stop")
	}
}

func TestOutcomeFail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind OutcomeKind
		body string
	}{
		{"compile", CompileFault(errors.New("SyntaxError: unexpected token")), CompileError, CompileErrorText},
		{"runtime", RuntimeFault(errors.New("ReferenceError: x is not defined\n    at <eval>")), RuntimeError, "error running: ReferenceError: x is not defined"},
		{"timeout", ErrTimeout, TimeoutError, TimeoutText},
		{"init", ErrNotInitialized, InitializationError, InitErrorText},
		{"empty message", RuntimeFault(errors.New("")), RuntimeError, "error running: uncaught exception"},
		{"invalid utf8", RuntimeFault(errors.New("Error: a\xed\xa0\x80b")), RuntimeError, "error running: Error: a\uFFFDb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := &Outcome{}
			o.Fail(tt.err)
			if o.Kind != tt.kind {
				t.Errorf("kind = %s, want %s", o.Kind, tt.kind)
			}
			if got := o.Body(); got != tt.body {
				t.Errorf("body = %q, want %q", got, tt.body)
			}
			if o.OK() {
				t.Error("OK() = true for a failed outcome")
			}
		})
	}
}

func TestParseLang(t *testing.T) {
	for in, want := range map[string]Lang{"": LangJS, "JS": LangJS, "typescript": LangTS, "ts": LangTS} {
		got, err := ParseLang(in)
		if err != nil || got != want {
			t.Errorf("ParseLang(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseLang("python"); err == nil {
		t.Error("ParseLang(python) should fail")
	}
}

func TestSettlePrefersTimeout(t *testing.T) {
	s := NewSession(nil, 0)
	_ = s.Advance(PhaseEnvironmentReady)
	_ = s.Advance(PhaseCompiled)

	o := &Outcome{}
	Settle(o, s, PhaseRuntimeFailed, RuntimeFault(errors.New("InternalError: interrupted")), true)
	if o.Kind != TimeoutError {
		t.Errorf("kind = %s, want timeout", o.Kind)
	}
	if got := s.Phase(); got != PhaseTimedOut {
		t.Errorf("phase = %s, want timeout", got)
	}
}

func TestSettleRecordsFailedPhase(t *testing.T) {
	s := NewSession(nil, 0)
	_ = s.Advance(PhaseEnvironmentReady)

	o := &Outcome{}
	Settle(o, s, PhaseCompileFailed, CompileFault(errors.New("SyntaxError: bad")), false)
	if o.Kind != CompileError {
		t.Errorf("kind = %s, want compile_error", o.Kind)
	}
	if o.Text != "SyntaxError: bad" {
		t.Errorf("text = %q", o.Text)
	}
	if got := s.Phase(); got != PhaseCompileFailed {
		t.Errorf("phase = %s, want compile_error", got)
	}
}
