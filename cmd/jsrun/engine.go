package main

import (
	"fmt"

	"github.com/cryguy/jsrun"
	"github.com/cryguy/jsrun/internal/config"
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, nil
}

// startEngine builds and initializes an engine from cfg. Callers must
// Shutdown it.
func startEngine(cfg *config.Config, opts ...jsrun.Option) (*jsrun.Engine, error) {
	e, err := jsrun.New(cfg.EngineConfig(), opts...)
	if err != nil {
		return nil, err
	}
	if err := e.Init(); err != nil {
		return nil, fmt.Errorf("initializing %s engine: %w", e.Backend(), err)
	}
	return e, nil
}
