package core

import (
	"fmt"
	"strings"
	"time"
)

// OutcomeKind tags the result of one script execution attempt.
type OutcomeKind int

const (
	Success OutcomeKind = iota
	CompileError
	RuntimeError
	TimeoutError
	InitializationError
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case CompileError:
		return "compile_error"
	case RuntimeError:
		return "runtime_error"
	case TimeoutError:
		return "timeout"
	case InitializationError:
		return "init_error"
	default:
		return fmt.Sprintf("outcome(%d)", int(k))
	}
}

// Fixed response texts. CompileErrorText is part of the wire contract and
// must not change.
const (
	CompileErrorText   = "error compiling"
	RuntimeErrorPrefix = "error running: "
	TimeoutText        = "error running: execution timed out"
	InitErrorText      = "error initializing"
)

// Outcome is the result of one session. Exactly one is produced per
// Execute call, after the session has been destroyed.
type Outcome struct {
	Kind      OutcomeKind
	Text      string // completion value for Success, diagnostic otherwise
	Err       error
	SessionID string
	Logs      []LogEntry
	Duration  time.Duration
}

// OK reports whether the script ran to completion.
func (o *Outcome) OK() bool {
	return o.Kind == Success
}

// Body renders the outcome as the text returned to callers.
func (o *Outcome) Body() string {
	switch o.Kind {
	case Success:
		return o.Text
	case CompileError:
		return CompileErrorText
	case RuntimeError:
		return RuntimeErrorPrefix + o.Text
	case TimeoutError:
		return TimeoutText
	default:
		return InitErrorText
	}
}

// Log levels recorded in LogEntry.Level.
const (
	LevelPrint = "print"
	LevelLog   = "log"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelDebug = "debug"
)

// LogEntry is a single print/console call captured from a script.
type LogEntry struct {
	SessionID string    `json:"session_id"`
	Level     string    `json:"level"`
	Message   string    `json:"message"`
	Time      time.Time `json:"time"`
}

// Lang selects how submitted source is treated before compilation.
type Lang string

const (
	LangJS Lang = "js"
	LangTS Lang = "ts"
)

// ParseLang maps a user-supplied language name to a Lang. The empty string
// means JavaScript.
func ParseLang(s string) (Lang, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "js", "javascript":
		return LangJS, nil
	case "ts", "typescript":
		return LangTS, nil
	default:
		return "", fmt.Errorf("unsupported language %q", s)
	}
}
