package core

import "errors"

var (
	// ErrNotInitialized is returned when a session is requested before the
	// engine platform finished its one-time initialization.
	ErrNotInitialized = errors.New("engine platform not initialized")

	// ErrShutdown is returned for sessions requested after Shutdown.
	ErrShutdown = errors.New("engine is shut down")

	// ErrInit wraps failures to allocate a substrate or install bindings.
	ErrInit = errors.New("session initialization failed")

	ErrCompile = errors.New("compile error")
	ErrRuntime = errors.New("runtime error")
	ErrTimeout = errors.New("execution timed out")

	// ErrDuplicateBinding is a configuration error: two host bindings share
	// a name.
	ErrDuplicateBinding = errors.New("duplicate host binding")

	// ErrInvalidBinding rejects binding names that are not usable globals.
	ErrInvalidBinding = errors.New("invalid host binding")

	ErrUnknownBinding = errors.New("unknown host binding")

	// ErrInvalidPhase is returned when a session operation is attempted
	// out of order.
	ErrInvalidPhase = errors.New("invalid session phase")
)
