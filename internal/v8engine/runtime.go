//go:build v8

package v8engine

import (
	"github.com/cryguy/jsrun/internal/core"
	v8 "github.com/tommie/v8go"
)

// v8Runtime implements core.JSRuntime for the V8 engine.
type v8Runtime struct {
	iso *v8.Isolate
	ctx *v8.Context
}

var _ core.JSRuntime = (*v8Runtime)(nil)

// Eval evaluates JavaScript and discards the result.
func (r *v8Runtime) Eval(js string) error {
	_, err := r.ctx.RunScript(js, "eval.js")
	return err
}

// RegisterFunc registers fn as a global JavaScript function taking one
// string. A Go error is thrown into the script as a string exception.
func (r *v8Runtime) RegisterFunc(name string, fn core.RawFunc) error {
	tmpl := v8.NewFunctionTemplate(r.iso, func(info *v8.FunctionCallbackInfo) *v8.Value {
		var payload string
		if args := info.Args(); len(args) > 0 {
			payload = args[0].String()
		}
		out, err := fn(payload)
		if err != nil {
			jsMsg, _ := v8.NewValue(r.iso, err.Error())
			r.iso.ThrowException(jsMsg)
			return nil
		}
		v, _ := v8.NewValue(r.iso, out)
		return v
	})
	return r.ctx.Global().Set(name, tmpl.GetFunction(r.ctx))
}
