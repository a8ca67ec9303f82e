package jsrun

import (
	"github.com/cryguy/jsrun/internal/bridge"
	"github.com/cryguy/jsrun/internal/core"
)

// Type aliases re-exporting internal types so callers can use
// jsrun.Outcome, jsrun.HostFunc, etc. without importing internal packages.

type Outcome = core.Outcome
type OutcomeKind = core.OutcomeKind
type LogEntry = core.LogEntry
type Sink = core.Sink
type SinkFunc = core.SinkFunc
type LogSink = core.LogSink
type Session = core.Session
type Lang = core.Lang
type EngineConfig = core.EngineConfig
type HostFunc = bridge.HostFunc
type Args = bridge.Args

// Outcome kinds.
const (
	Success             = core.Success
	CompileError        = core.CompileError
	RuntimeError        = core.RuntimeError
	TimeoutError        = core.TimeoutError
	InitializationError = core.InitializationError
)

// Languages accepted by ExecuteLang.
const (
	LangJS = core.LangJS
	LangTS = core.LangTS
)

const CompileErrorText = core.CompileErrorText

// Errors re-exported from core.
var (
	ErrDuplicateBinding = core.ErrDuplicateBinding
	ErrInvalidBinding   = core.ErrInvalidBinding
)

var ParseLang = core.ParseLang
var Discard = core.Discard
