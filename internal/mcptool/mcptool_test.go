package mcptool

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryguy/jsrun"
	"github.com/cryguy/jsrun/internal/core"
)

type fakeRunner struct {
	kind core.OutcomeKind
	text string
	lang core.Lang
}

func (f *fakeRunner) ExecuteLang(_ context.Context, lang core.Lang, src string) *core.Outcome {
	f.lang = lang
	text := f.text
	if text == "" {
		text = src
	}
	return &core.Outcome{Kind: f.kind, SessionID: "s", Text: text}
}

func (f *fakeRunner) Backend() string { return "fake" }

func call(t *testing.T, r Runner, args any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Name = ToolName
	req.Params.Arguments = args
	res, err := Handler(r)(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, res.Content, 1)
	return res
}

func text(res *mcp.CallToolResult) string {
	return res.Content[0].(mcp.TextContent).Text
}

func TestHandlerSuccess(t *testing.T) {
	r := &fakeRunner{kind: core.Success}
	res := call(t, r, map[string]any{"source": "1+1", "lang": "ts"})
	assert.False(t, res.IsError)
	assert.Equal(t, "1+1", text(res))
	assert.Equal(t, core.LangTS, r.lang)
}

func TestHandlerFailureIsError(t *testing.T) {
	res := call(t, &fakeRunner{kind: core.CompileError}, map[string]any{"source": "(("})
	assert.True(t, res.IsError)
	assert.Equal(t, core.CompileErrorText, text(res))
}

func TestHandlerBadArguments(t *testing.T) {
	r := &fakeRunner{kind: core.Success}

	res := call(t, r, nil)
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "invalid arguments")

	res = call(t, r, map[string]any{"lang": "js"})
	assert.True(t, res.IsError)
	assert.Contains(t, text(res), "'source' is required")

	res = call(t, r, map[string]any{"source": "1", "lang": "cobol"})
	assert.True(t, res.IsError)
}

func TestHandlerTruncatesOutput(t *testing.T) {
	r := &fakeRunner{kind: core.Success, text: strings.Repeat("x", maxOutput+10)}
	res := call(t, r, map[string]any{"source": "1"})
	assert.True(t, strings.HasSuffix(text(res), "(output truncated)"))
	assert.Less(t, len(text(res)), maxOutput+50)
}

func TestHandlerRealEngine(t *testing.T) {
	e, err := jsrun.New(jsrun.DefaultConfig(), jsrun.WithSink(jsrun.Discard))
	require.NoError(t, err)
	require.NoError(t, e.Init())
	t.Cleanup(e.Shutdown)

	res := call(t, e, map[string]any{"source": "[1, 2].map(x => x * 3)"})
	assert.False(t, res.IsError)
	assert.Equal(t, "3,6", text(res))
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(&fakeRunner{}, "test"))
}
