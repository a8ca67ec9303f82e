package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cryguy/jsrun"
)

var langFlag string

var runCmd = &cobra.Command{
	Use:   "run [file|-]",
	Short: "Run a script file once and print its result",
	Long: `Run a script and print the stringified completion value to stdout.
Printed and console output goes to stderr. The exit status is 1 when the
script fails to compile, throws or times out.

The language is taken from --lang, else from the file extension (.ts is
TypeScript), else JavaScript. With no file or "-" the script is read from
stdin.

Examples:
  jsrun run script.js
  echo '6 * 7' | jsrun run
  jsrun run --lang ts - < snippet.ts`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&langFlag, "lang", "", "Source language: js or ts")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}

	src, err := readSource(path, cmd.InOrStdin())
	if err != nil {
		return err
	}

	name := langFlag
	if name == "" && strings.EqualFold(filepath.Ext(path), ".ts") {
		name = "ts"
	}
	lang, err := jsrun.ParseLang(name)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	engine, err := startEngine(cfg, jsrun.WithSink(jsrun.LogSink{Logger: log.New(cmd.ErrOrStderr(), "", 0)}))
	if err != nil {
		return err
	}
	defer engine.Shutdown()

	o := engine.ExecuteLang(context.Background(), lang, src)
	fmt.Fprintln(cmd.OutOrStdout(), o.Body())
	if !o.OK() {
		engine.Shutdown()
		os.Exit(1)
	}
	return nil
}

func readSource(path string, stdin io.Reader) (string, error) {
	var (
		b   []byte
		err error
	)
	if path == "-" {
		b, err = io.ReadAll(stdin)
	} else {
		b, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("reading script: %w", err)
	}
	return string(b), nil
}
