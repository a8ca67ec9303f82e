package core

import "time"

// EngineConfig holds runtime configuration for the script engine.
type EngineConfig struct {
	ExecutionTimeout int      // milliseconds before a session is interrupted, 0 disables
	Console          bool     // install a console object routed to the sink
	MaxLogEntries    int      // per-session captured entries, 0 means MaxLogEntries
	V8Flags          []string // passed to V8 once at platform init (v8 builds only)
}

// Timeout returns the execution timeout as a duration.
func (c EngineConfig) Timeout() time.Duration {
	return time.Duration(c.ExecutionTimeout) * time.Millisecond
}

// LogLimit returns the effective per-session log entry cap.
func (c EngineConfig) LogLimit() int {
	if c.MaxLogEntries <= 0 {
		return MaxLogEntries
	}
	return c.MaxLogEntries
}
