package core

import (
	"fmt"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

const MaxLogEntries = 1000
const MaxLogMessageSize = 4096

// Phase is a session's position in its lifecycle.
type Phase int

const (
	PhaseCreated Phase = iota
	PhaseEnvironmentReady
	PhaseCompiled
	PhaseExecuted
	PhaseCompileFailed
	PhaseRuntimeFailed
	PhaseTimedOut
	PhaseDestroyed
)

var phaseNames = [...]string{
	PhaseCreated:          "created",
	PhaseEnvironmentReady: "environment_ready",
	PhaseCompiled:         "compiled",
	PhaseExecuted:         "executed",
	PhaseCompileFailed:    "compile_error",
	PhaseRuntimeFailed:    "runtime_error",
	PhaseTimedOut:         "timeout",
	PhaseDestroyed:        "destroyed",
}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// transitions lists the legal forward moves. Destroyed is reachable from
// every phase and is handled by Close.
var transitions = map[Phase][]Phase{
	PhaseCreated:          {PhaseEnvironmentReady},
	PhaseEnvironmentReady: {PhaseCompiled, PhaseCompileFailed, PhaseTimedOut},
	PhaseCompiled:         {PhaseExecuted, PhaseRuntimeFailed, PhaseTimedOut},
}

// Session holds the per-session state shared between an engine backend and
// the host bridge: identity, lifecycle phase, captured logs and cleanups.
// One Session belongs to exactly one substrate instance.
type Session struct {
	ID string

	mu       sync.Mutex
	phase    Phase
	logs     []LogEntry
	maxLogs  int
	sink     Sink
	cleanups []func()
}

// NewSession creates a session in PhaseCreated with a fresh random ID.
// A nil sink discards host output.
func NewSession(sink Sink, maxLogs int) *Session {
	if sink == nil {
		sink = Discard
	}
	if maxLogs <= 0 {
		maxLogs = MaxLogEntries
	}
	return &Session{
		ID:      uuid.NewString(),
		phase:   PhaseCreated,
		maxLogs: maxLogs,
		sink:    sink,
	}
}

// Phase returns the current lifecycle phase.
func (s *Session) Phase() Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// Advance moves the session to next if that is a legal move from the
// current phase.
func (s *Session) Advance(next Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range transitions[s.phase] {
		if p == next {
			s.phase = next
			return nil
		}
	}
	return fmt.Errorf("%w: %s -> %s", ErrInvalidPhase, s.phase, next)
}

// Expect returns ErrInvalidPhase unless the session is in want.
func (s *Session) Expect(want Phase) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase != want {
		return fmt.Errorf("%w: in %s, want %s", ErrInvalidPhase, s.phase, want)
	}
	return nil
}

// AddLog records a host log entry and forwards it to the sink. Entries
// past the cap are dropped; oversized messages are truncated.
func (s *Session) AddLog(level, message string) {
	message = ValidText(message)
	if len(message) > MaxLogMessageSize {
		cut := MaxLogMessageSize
		for cut > 0 && !utf8.RuneStart(message[cut]) {
			cut--
		}
		message = message[:cut] + "...(truncated)"
	}
	entry := LogEntry{
		SessionID: s.ID,
		Level:     level,
		Message:   message,
		Time:      time.Now(),
	}
	s.mu.Lock()
	if len(s.logs) < s.maxLogs {
		s.logs = append(s.logs, entry)
	}
	s.mu.Unlock()
	s.sink.Write(entry)
}

// Logs returns a copy of the captured entries.
func (s *Session) Logs() []LogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.logs) == 0 {
		return nil
	}
	out := make([]LogEntry, len(s.logs))
	copy(out, s.logs)
	return out
}

// RegisterCleanup adds a function to run when the session is closed.
// Cleanups run in reverse registration order.
func (s *Session) RegisterCleanup(fn func()) {
	s.mu.Lock()
	s.cleanups = append(s.cleanups, fn)
	s.mu.Unlock()
}

// Close runs the registered cleanups and moves the session to
// PhaseDestroyed. Closing twice is a no-op.
func (s *Session) Close() {
	s.mu.Lock()
	if s.phase == PhaseDestroyed {
		s.mu.Unlock()
		return
	}
	s.phase = PhaseDestroyed
	cleanups := s.cleanups
	s.cleanups = nil
	s.mu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
