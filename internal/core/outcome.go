package core

import (
	"errors"
	"fmt"
	"strings"
)

// Diagnostic extracts the first line of an engine error for display.
// Engine errors often carry a stack trace after the message.
func Diagnostic(err error) string {
	if err == nil {
		return ""
	}
	msg := strings.TrimSpace(err.Error())
	if i := strings.IndexByte(msg, '\n'); i >= 0 {
		msg = strings.TrimSpace(msg[:i])
	}
	return ValidText(msg)
}

// ValidText replaces invalid UTF-8 in s, such as the encoding of an
// unpaired surrogate, with U+FFFD.
func ValidText(s string) string {
	return strings.ToValidUTF8(s, "\uFFFD")
}

// UnknownException stands in for a thrown value whose message cannot be
// rendered.
const UnknownException = "uncaught exception"

// Fail fills o from err, choosing the outcome kind from the sentinel the
// error wraps.
func (o *Outcome) Fail(err error) {
	o.Err = err
	switch {
	case errors.Is(err, ErrCompile):
		o.Kind = CompileError
		o.Text = causeText(err)
	case errors.Is(err, ErrTimeout):
		o.Kind = TimeoutError
		o.Text = TimeoutText
	case errors.Is(err, ErrRuntime):
		o.Kind = RuntimeError
		o.Text = causeText(err)
	default:
		o.Kind = InitializationError
		o.Text = Diagnostic(err)
	}
}

// RuntimeFault wraps an engine error as ErrRuntime while keeping its
// message as the diagnostic.
func RuntimeFault(err error) error {
	return &faultError{sentinel: ErrRuntime, cause: err}
}

// CompileFault wraps an engine error as ErrCompile.
func CompileFault(err error) error {
	return &faultError{sentinel: ErrCompile, cause: err}
}

type faultError struct {
	sentinel error
	cause    error
}

func (e *faultError) Error() string {
	return fmt.Sprintf("%v: %v", e.sentinel, e.cause)
}

func (e *faultError) Unwrap() []error {
	return []error{e.sentinel, e.cause}
}

func causeText(err error) string {
	var fe *faultError
	if errors.As(err, &fe) {
		err = fe.cause
	}
	if msg := Diagnostic(err); msg != "" {
		return msg
	}
	return UnknownException
}

// Settle records a failed step on both the session and the outcome. A
// fired watchdog wins over whatever error the engine reported, since an
// interrupted engine surfaces the interrupt as an ordinary exception.
func Settle(o *Outcome, s *Session, failed Phase, err error, timedOut bool) {
	if timedOut {
		_ = s.Advance(PhaseTimedOut)
		o.Fail(ErrTimeout)
		return
	}
	if errors.Is(err, ErrCompile) || errors.Is(err, ErrRuntime) {
		_ = s.Advance(failed)
	}
	o.Fail(err)
}
