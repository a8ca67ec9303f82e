package core

import "log"

// Sink receives host-visible output produced by scripts through the host
// bridge. Write is called synchronously on the executing goroutine and
// may be called from many sessions at once.
type Sink interface {
	Write(entry LogEntry)
}

// SinkFunc adapts a function to a Sink.
type SinkFunc func(entry LogEntry)

func (f SinkFunc) Write(entry LogEntry) { f(entry) }

// Discard drops every entry.
var Discard Sink = SinkFunc(func(LogEntry) {})

// LogSink writes entries through a standard library logger. A nil Logger
// uses log.Default().
type LogSink struct {
	Logger *log.Logger
}

func (s LogSink) Write(entry LogEntry) {
	l := s.Logger
	if l == nil {
		l = log.Default()
	}
	if entry.Level == LevelPrint {
		l.Printf("printing: %s", entry.Message)
		return
	}
	l.Printf("console.%s [%s]: %s", entry.Level, entry.SessionID, entry.Message)
}
