//go:build !v8

package jsrun

import (
	"github.com/cryguy/jsrun/internal/bridge"
	"github.com/cryguy/jsrun/internal/core"
	"github.com/cryguy/jsrun/internal/quickjs"
)

func newBackend(cfg core.EngineConfig, reg *bridge.Registry, sink core.Sink) core.EngineBackend {
	return quickjs.NewEngine(cfg, reg, sink)
}
