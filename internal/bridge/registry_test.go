package bridge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryguy/jsrun/internal/core"
)

func noop(context.Context, *core.Session, Args) (any, error) { return nil, nil }

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(
		WithPrint(),
		WithBinding("add", noop),
		WithConsole(),
	)
	require.NoError(t, err)

	assert.Equal(t, []string{"add", "print"}, reg.Names())
	assert.True(t, reg.Has("print"))
	assert.False(t, reg.Has("missing"))
	assert.True(t, reg.Console())

	_, ok := reg.Lookup("add")
	assert.True(t, ok)
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(WithPrint(), WithBinding("print", noop))
	assert.ErrorIs(t, err, core.ErrDuplicateBinding)
}

func TestNewRegistryRejectsBadNames(t *testing.T) {
	tests := []struct {
		name string
		fn   HostFunc
	}{
		{"", noop},
		{"1abc", noop},
		{"has space", noop},
		{"__private", noop},
		{"console", noop},
		{"eval", noop},
		{"ok", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRegistry(WithBinding(tt.name, tt.fn))
			assert.ErrorIs(t, err, core.ErrInvalidBinding)
		})
	}
}

func TestNamesReturnsCopy(t *testing.T) {
	reg, err := NewRegistry(WithPrint())
	require.NoError(t, err)

	names := reg.Names()
	names[0] = "mutated"
	assert.Equal(t, []string{"print"}, reg.Names())
}

func TestArgsGet(t *testing.T) {
	a := Args{"x"}
	assert.Equal(t, "x", a.Get(0))
	assert.Equal(t, "undefined", a.Get(1))
	assert.Equal(t, "undefined", a.Get(-1))
}

func TestPrint(t *testing.T) {
	var got []core.LogEntry
	s := core.NewSession(core.SinkFunc(func(e core.LogEntry) { got = append(got, e) }), 0)

	v, err := Print(context.Background(), s, Args{"hello"})
	require.NoError(t, err)
	assert.Equal(t, PrintResult, v)
	require.Len(t, got, 1)
	assert.Equal(t, core.LevelPrint, got[0].Level)
	assert.Equal(t, "hello", got[0].Message)
}
