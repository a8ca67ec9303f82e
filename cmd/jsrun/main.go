package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// version is overridden at link time with -ldflags "-X main.version=...".
var version = "dev"

var configFlag string

var rootCmd = &cobra.Command{
	Use:   "jsrun",
	Short: "jsrun - run scripts in throwaway JavaScript sandboxes",
	Long: `jsrun executes JavaScript and TypeScript snippets, each in a fresh
engine session that is destroyed after the run.

It can serve scripts over HTTP and websockets, run files from the command
line, host an interactive REPL, or expose itself as an MCP tool.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "Path to jsrun.yaml (default: ./jsrun.yaml or $HOME/.jsrun/jsrun.yaml)")
	rootCmd.Version = version
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
