//go:build !v8

package quickjs

import (
	"fmt"

	"github.com/cryguy/jsrun/internal/core"
	"modernc.org/quickjs"
)

// platform is the process-wide QuickJS substrate. modernc.org/quickjs has
// no global state to set up, so init only proves a VM can be created, can
// have its call depth capped and can evaluate code.
var platform = core.NewPlatform("quickjs", probe)

func probe() error {
	vm, err := quickjs.NewVM()
	if err != nil {
		return fmt.Errorf("creating probe VM: %w", err)
	}
	defer vm.Close()

	rt := &qjsRuntime{vm: vm}
	if err := rt.limitStack(stackSlots); err != nil {
		return fmt.Errorf("probe stack limit: %w", err)
	}

	if _, err := vm.Eval("1 + 1", quickjs.EvalGlobal); err != nil {
		return fmt.Errorf("probe eval: %w", err)
	}
	return nil
}
