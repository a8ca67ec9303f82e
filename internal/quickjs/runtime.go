//go:build !v8

package quickjs

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/cryguy/jsrun/internal/core"
	"modernc.org/libc"
	lib "modernc.org/libquickjs"
	"modernc.org/quickjs"
)

// stackSlots bounds JS call depth in libc stack slots. The runtime's own
// default is effectively unlimited, which lets deep recursion exhaust the
// goroutine stack and kill the process before QuickJS notices.
const stackSlots = lib.MaxStackSlots

// qjsRuntime implements core.JSRuntime for the QuickJS engine.
type qjsRuntime struct {
	vm  *quickjs.VM
	tls *libc.TLS
	ctx uintptr // JSContext*
}

var _ core.JSRuntime = (*qjsRuntime)(nil)

// Eval evaluates JavaScript and discards the result.
func (r *qjsRuntime) Eval(js string) error {
	v, err := r.vm.EvalValue(js, quickjs.EvalGlobal)
	if err != nil {
		return err
	}
	v.Free()
	return nil
}

// RegisterFunc registers fn as a global JavaScript function. The raw Go
// function returns a single tagged string ('v' value or 'e' message) and a
// JS shim turns the 'e' form into a thrown TypeError.
func (r *qjsRuntime) RegisterFunc(name string, fn core.RawFunc) error {
	rawName := "__raw_" + name
	if err := r.vm.RegisterFunc(rawName, func(payload string) string {
		out, err := fn(payload)
		if err != nil {
			return "e" + err.Error()
		}
		return "v" + out
	}, false); err != nil {
		return err
	}
	wrapJS := fmt.Sprintf(`(function() {
		var raw = globalThis[%q];
		globalThis[%q] = function(payload) {
			var r = raw(payload);
			if (r.charAt(0) === 'e') throw new TypeError(r.slice(1));
			return r.slice(1);
		};
		delete globalThis[%q];
	})()`, rawName, name, rawName)
	return r.Eval(wrapJS)
}

// limitStack caps the VM's call depth. Past the cap QuickJS throws a
// catchable InternalError ("stack overflow").
func (r *qjsRuntime) limitStack(slots int) error {
	if err := r.extractVMInternals(); err != nil {
		return err
	}
	rt := lib.XJS_GetRuntime(r.tls, r.ctx)
	if rt == 0 {
		return fmt.Errorf("JSRuntime is nil")
	}
	lib.XJS_SetMaxStackSize(r.tls, rt, lib.Tsize_t(slots))
	return nil
}

// extractVMInternals uses reflect+unsafe to cache the VM's tls and ctx.
func (r *qjsRuntime) extractVMInternals() (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic extracting VM internals: %v", p)
		}
	}()

	vmType := reflect.TypeOf(r.vm).Elem()
	vmPtr := uintptr(unsafe.Pointer(r.vm))

	// cContext is the first field of VM.
	ctxField, ok := vmType.FieldByName("cContext")
	if !ok || ctxField.Offset != 0 {
		return fmt.Errorf("quickjs.VM layout changed: no cContext at offset 0")
	}
	r.ctx = *(*uintptr)(unsafe.Pointer(vmPtr))
	if r.ctx == 0 {
		return fmt.Errorf("JSContext is nil")
	}

	rtField, ok := vmType.FieldByName("runtime")
	if !ok {
		return fmt.Errorf("quickjs.VM missing 'runtime' field")
	}
	rtPtr := *(*uintptr)(unsafe.Pointer(vmPtr + rtField.Offset))
	if rtPtr == 0 {
		return fmt.Errorf("runtime pointer is nil")
	}

	// tls follows cRuntime in the wrapper's runtime struct.
	r.tls = *(**libc.TLS)(unsafe.Pointer(rtPtr + unsafe.Sizeof(uintptr(0))))
	if r.tls == nil {
		return fmt.Errorf("TLS is nil")
	}
	return nil
}
