package core

// RawFunc is the single host-call shape both engines expose to JavaScript:
// one string in, one string out. A non-nil error is thrown inside the script.
type RawFunc func(payload string) (string, error)

// JSRuntime abstracts the JavaScript engine (V8 or QuickJS) behind a
// common interface used by the host bridge in internal/bridge.
type JSRuntime interface {
	// Eval evaluates JavaScript source and discards the result.
	Eval(js string) error

	// RegisterFunc registers a Go function as a global JavaScript function
	// taking one string argument and returning a string. On error return,
	// the JS wrapper throws instead of returning.
	RegisterFunc(name string, fn RawFunc) error
}

// StringifyFuncJS is a function expression that converts a completion
// value with the engine's own ToString without touching the global object.
// Symbols reject template conversion and fall back to their description
// form.
const StringifyFuncJS = `(function(r) {
	try { return ` + "`${r}`" + `; } catch (e) { if (typeof r === 'symbol') return r.toString(); throw e; }
})`
