package bridge

import (
	"context"

	"github.com/cryguy/jsrun/internal/core"
)

const PrintName = "print"

// PrintResult is what print returns to the script, whatever it printed.
const PrintResult = "returned string"

// Print writes its first argument to the session sink.
func Print(_ context.Context, s *core.Session, args Args) (any, error) {
	s.AddLog(core.LevelPrint, args.Get(0))
	return PrintResult, nil
}
