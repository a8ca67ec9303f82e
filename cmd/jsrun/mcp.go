package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/cryguy/jsrun"
	"github.com/cryguy/jsrun/internal/mcptool"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the run_script tool over MCP stdio",
	Long: `Serve a Model Context Protocol server on stdin/stdout with a single
run_script tool. Script output is logged to stderr so it never mixes with
protocol traffic.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	engine, err := startEngine(cfg, jsrun.WithSink(jsrun.LogSink{Logger: log.New(os.Stderr, "jsrun: ", 0)}))
	if err != nil {
		return err
	}
	defer engine.Shutdown()

	return mcptool.Serve(mcptool.NewServer(engine, version))
}
