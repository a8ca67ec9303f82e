package core

import "context"

// EngineBackend is the interface that engine implementations (QuickJS, V8)
// must satisfy. The root jsrun.Engine facade delegates to one of these
// based on build tags.
type EngineBackend interface {
	// Name identifies the backend ("quickjs" or "v8").
	Name() string

	// Init runs the process-wide platform initialization. Safe to call
	// more than once; only the first call does any work.
	Init() error

	// Execute runs src in a fresh session and returns its outcome. The
	// session is destroyed before Execute returns.
	Execute(ctx context.Context, src string) *Outcome

	// LiveSessions reports the number of substrate instances currently
	// allocated by this backend.
	LiveSessions() int64

	// Shutdown waits for in-flight sessions and rejects new ones.
	Shutdown()
}
