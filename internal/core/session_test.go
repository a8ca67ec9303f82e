package core

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"unicode/utf8"
)

func TestSessionLifecycle(t *testing.T) {
	s := NewSession(nil, 0)
	if s.ID == "" {
		t.Fatal("session ID is empty")
	}
	if got := s.Phase(); got != PhaseCreated {
		t.Fatalf("phase = %s, want created", got)
	}

	steps := []Phase{PhaseEnvironmentReady, PhaseCompiled, PhaseExecuted}
	for _, p := range steps {
		if err := s.Advance(p); err != nil {
			t.Fatalf("Advance(%s): %v", p, err)
		}
	}

	s.Close()
	if got := s.Phase(); got != PhaseDestroyed {
		t.Errorf("phase after Close = %s, want destroyed", got)
	}
}

func TestSessionRejectsOutOfOrderMoves(t *testing.T) {
	s := NewSession(nil, 0)
	err := s.Advance(PhaseCompiled)
	if !errors.Is(err, ErrInvalidPhase) {
		t.Fatalf("Advance(compiled) from created: err = %v, want ErrInvalidPhase", err)
	}

	_ = s.Advance(PhaseEnvironmentReady)
	_ = s.Advance(PhaseCompileFailed)
	if err := s.Advance(PhaseExecuted); !errors.Is(err, ErrInvalidPhase) {
		t.Errorf("Advance(executed) after compile failure: err = %v, want ErrInvalidPhase", err)
	}
	if err := s.Expect(PhaseCompileFailed); err != nil {
		t.Errorf("Expect(compile_error): %v", err)
	}
}

func TestSessionCloseRunsCleanupsOnceInReverse(t *testing.T) {
	s := NewSession(nil, 0)
	var order []int
	s.RegisterCleanup(func() { order = append(order, 1) })
	s.RegisterCleanup(func() { order = append(order, 2) })

	s.Close()
	s.Close()

	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("cleanup order = %v, want [2 1]", order)
	}
}

func TestSessionAddLogForwardsAndCaps(t *testing.T) {
	var mu sync.Mutex
	var seen []LogEntry
	sink := SinkFunc(func(e LogEntry) {
		mu.Lock()
		seen = append(seen, e)
		mu.Unlock()
	})

	s := NewSession(sink, 2)
	s.AddLog(LevelPrint, "one")
	s.AddLog(LevelPrint, "two")
	s.AddLog(LevelPrint, "three")

	if got := len(s.Logs()); got != 2 {
		t.Errorf("captured %d entries, want 2", got)
	}
	if len(seen) != 3 {
		t.Errorf("sink saw %d entries, want 3", len(seen))
	}
	for _, e := range seen {
		if e.SessionID != s.ID {
			t.Errorf("entry session = %q, want %q", e.SessionID, s.ID)
		}
	}
}

func TestSessionAddLogTruncates(t *testing.T) {
	s := NewSession(nil, 0)
	s.AddLog(LevelPrint, strings.Repeat("x", MaxLogMessageSize+10))
	logs := s.Logs()
	if len(logs) != 1 {
		t.Fatalf("got %d entries, want 1", len(logs))
	}
	if !strings.HasSuffix(logs[0].Message, "...(truncated)") {
		t.Errorf("message not truncated: len=%d", len(logs[0].Message))
	}
}

func TestSessionAddLogTruncatesOnRuneBoundary(t *testing.T) {
	s := NewSession(nil, 0)
	// The 3-byte rune straddles the size limit.
	s.AddLog(LevelPrint, strings.Repeat("x", MaxLogMessageSize-1)+strings.Repeat("€", 4))
	msg := s.Logs()[0].Message
	if !utf8.ValidString(msg) {
		t.Fatalf("truncated message is not valid UTF-8")
	}
	want := strings.Repeat("x", MaxLogMessageSize-1) + "...(truncated)"
	if msg != want {
		t.Errorf("message tail = %q", msg[len(msg)-20:])
	}
}

func TestSessionIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewSession(nil, 0).ID
		if seen[id] {
			t.Fatalf("duplicate session ID %s", id)
		}
		seen[id] = true
	}
}
