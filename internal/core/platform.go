package core

import (
	"fmt"
	"sync"
	"sync/atomic"
)

// Platform guards the one-time, process-wide initialization of an engine
// substrate. It is never torn down; each backend package holds exactly one.
type Platform struct {
	name  string
	init  func() error
	once  sync.Once
	err   error
	ready atomic.Bool
}

// NewPlatform returns an uninitialized platform that runs init on the
// first call to Init.
func NewPlatform(name string, init func() error) *Platform {
	return &Platform{name: name, init: init}
}

// Init runs the initializer exactly once. Every call returns the result
// of that single run; a failed init stays failed for the process lifetime.
func (p *Platform) Init() error {
	p.once.Do(func() {
		defer func() {
			if r := recover(); r != nil {
				p.err = fmt.Errorf("initializing %s platform: panic: %v", p.name, r)
			}
		}()
		if err := p.init(); err != nil {
			p.err = fmt.Errorf("initializing %s platform: %w", p.name, err)
			return
		}
		p.ready.Store(true)
	})
	return p.err
}

// Ready returns nil once Init has completed successfully.
func (p *Platform) Ready() error {
	if p.ready.Load() {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrNotInitialized, p.name)
}

// Name returns the platform name.
func (p *Platform) Name() string {
	return p.name
}
