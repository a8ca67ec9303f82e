// Package transpile turns TypeScript source into plain JavaScript before
// it reaches an engine.
package transpile

import (
	"fmt"
	"strings"

	esbuild "github.com/evanw/esbuild/pkg/api"

	"github.com/cryguy/jsrun/internal/core"
)

// TypeScript strips types from src. Nothing is bundled, so import
// statements survive and fail later like they would in plain JavaScript.
// Transform errors are wrapped with core.CompileFault.
func TypeScript(src string) (string, error) {
	result := esbuild.Transform(src, esbuild.TransformOptions{
		Loader:     esbuild.LoaderTS,
		Target:     esbuild.ES2022,
		Sourcefile: "script.ts",
	})

	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, e := range result.Errors {
			msgs = append(msgs, formatMessage(e))
		}
		return "", core.CompileFault(fmt.Errorf("transpiling TypeScript: %s", strings.Join(msgs, "; ")))
	}
	return string(result.Code), nil
}

// Source prepares src for an engine according to lang.
func Source(lang core.Lang, src string) (string, error) {
	switch lang {
	case core.LangJS:
		return src, nil
	case core.LangTS:
		return TypeScript(src)
	default:
		return "", fmt.Errorf("unsupported language %q", lang)
	}
}

func formatMessage(m esbuild.Message) string {
	if m.Location == nil {
		return m.Text
	}
	return fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text)
}
