// Package bridge defines the host functions exposed to scripts and installs
// them into a session's global scope.
package bridge

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/cryguy/jsrun/internal/core"
)

// Args holds script-supplied arguments converted with the engine's native
// to-string conversion.
type Args []string

// Get returns the i-th argument, or "undefined" when the script passed
// fewer arguments.
func (a Args) Get(i int) string {
	if i < 0 || i >= len(a) {
		return "undefined"
	}
	return a[i]
}

// HostFunc is a native callback. The returned value is handed back to the
// script: nil becomes undefined, anything else is JSON-marshaled.
type HostFunc func(ctx context.Context, s *core.Session, args Args) (any, error)

// Binding names a HostFunc.
type Binding struct {
	Name string
	Func HostFunc
}

// Registry is an immutable set of host bindings. Once built it is safe for
// concurrent use by any number of sessions.
type Registry struct {
	funcs   map[string]HostFunc
	names   []string
	console bool
}

// Option configures a Registry under construction.
type Option func(*builder)

type builder struct {
	funcs   map[string]HostFunc
	console bool
	errs    []error
}

var identRe = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// reserved names are owned by the bridge or the engine.
var reserved = map[string]bool{
	"console":    true,
	"globalThis": true,
	"undefined":  true,
	"NaN":        true,
	"Infinity":   true,
	"eval":       true,
}

// NewRegistry builds a Registry. Duplicate or unusable names are
// configuration errors reported here, never at run time.
func NewRegistry(opts ...Option) (*Registry, error) {
	b := &builder{funcs: make(map[string]HostFunc)}
	for _, opt := range opts {
		opt(b)
	}
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}

	names := make([]string, 0, len(b.funcs))
	for name := range b.funcs {
		names = append(names, name)
	}
	sort.Strings(names)

	return &Registry{funcs: b.funcs, names: names, console: b.console}, nil
}

func (b *builder) add(name string, fn HostFunc) {
	switch {
	case !identRe.MatchString(name):
		b.errs = append(b.errs, fmt.Errorf("%w: %q is not a JavaScript identifier", core.ErrInvalidBinding, name))
	case strings.HasPrefix(name, "__"), reserved[name]:
		b.errs = append(b.errs, fmt.Errorf("%w: %q is reserved", core.ErrInvalidBinding, name))
	case fn == nil:
		b.errs = append(b.errs, fmt.Errorf("%w: %q has no callback", core.ErrInvalidBinding, name))
	default:
		if _, exists := b.funcs[name]; exists {
			b.errs = append(b.errs, fmt.Errorf("%w: %q", core.ErrDuplicateBinding, name))
			return
		}
		b.funcs[name] = fn
	}
}

// WithBinding registers fn under name.
func WithBinding(name string, fn HostFunc) Option {
	return func(b *builder) { b.add(name, fn) }
}

// WithBindings registers several bindings.
func WithBindings(bindings ...Binding) Option {
	return func(b *builder) {
		for _, bd := range bindings {
			b.add(bd.Name, bd.Func)
		}
	}
}

// WithPrint registers the print binding.
func WithPrint() Option {
	return WithBinding(PrintName, Print)
}

// WithConsole installs a console object whose methods write to the sink.
func WithConsole() Option {
	return func(b *builder) { b.console = true }
}

// Lookup returns the callback registered under name.
func (r *Registry) Lookup(name string) (HostFunc, bool) {
	fn, ok := r.funcs[name]
	return fn, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.funcs[name]
	return ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Console reports whether the console object is installed.
func (r *Registry) Console() bool {
	return r.console
}
