// Package mcptool exposes the script engine as a Model Context Protocol
// tool served over stdio.
package mcptool

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/cryguy/jsrun/internal/core"
)

// ToolName is the name clients call.
const ToolName = "run_script"

const maxOutput = 4000

// Runner executes one script per call.
type Runner interface {
	ExecuteLang(ctx context.Context, lang core.Lang, src string) *core.Outcome
	Backend() string
}

// NewServer builds an MCP server with the run_script tool registered.
func NewServer(runner Runner, version string) *server.MCPServer {
	s := server.NewMCPServer("jsrun", version)

	s.AddTool(mcp.Tool{
		Name: ToolName,
		Description: fmt.Sprintf(
			"Run a JavaScript or TypeScript snippet in a fresh %s sandbox and return the stringified completion value.",
			runner.Backend()),
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"source": map[string]any{
					"type":        "string",
					"description": "Script source",
				},
				"lang": map[string]any{
					"type":        "string",
					"description": "Source language: js (default) or ts",
				},
			},
			Required: []string{"source"},
		},
	}, Handler(runner))

	return s
}

// Serve runs s on stdin/stdout until the input is closed.
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}

// Handler returns the run_script tool handler.
func Handler(runner Runner) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		if args == nil {
			return errResult("error: invalid arguments"), nil
		}

		src, ok := args["source"].(string)
		if !ok {
			return errResult("error: 'source' is required"), nil
		}
		name, _ := args["lang"].(string)
		lang, err := core.ParseLang(name)
		if err != nil {
			return errResult(fmt.Sprintf("error: %v", err)), nil
		}

		o := runner.ExecuteLang(ctx, lang, src)

		text := o.Body()
		if len(text) > maxOutput {
			text = text[:maxOutput] + "\n... (output truncated)"
		}
		return &mcp.CallToolResult{
			Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
			IsError: !o.OK(),
		}, nil
	}
}

func errResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: text}},
		IsError: true,
	}
}
