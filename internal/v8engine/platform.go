//go:build v8

package v8engine

import (
	"fmt"
	"sync"

	"github.com/cryguy/jsrun/internal/core"
	v8 "github.com/tommie/v8go"
)

var (
	platformOnce sync.Once
	platform     *core.Platform
)

// getPlatform returns the process-wide V8 platform. Flags only take effect
// from the first call; V8 reads them once when it starts.
func getPlatform(flags []string) *core.Platform {
	platformOnce.Do(func() {
		platform = core.NewPlatform("v8", func() error {
			if len(flags) > 0 {
				v8.SetFlags(flags...)
			}
			iso := v8.NewIsolate()
			defer iso.Dispose()
			ctx := v8.NewContext(iso)
			defer ctx.Close()
			if _, err := ctx.RunScript("1 + 1", "probe.js"); err != nil {
				return fmt.Errorf("probe eval: %w", err)
			}
			return nil
		})
	})
	return platform
}
