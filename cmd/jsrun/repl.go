package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/cryguy/jsrun"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start an interactive prompt",
	Long: `Start an interactive prompt. Every line runs in its own fresh session,
so variables do not carry over between lines.

Type /help for commands, /quit to exit.`,
	RunE: runREPL,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runREPL(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	sink := jsrun.SinkFunc(func(e jsrun.LogEntry) {
		fmt.Fprintf(out, "  \033[90m%s: %s\033[0m\n", e.Level, e.Message)
	})
	engine, err := startEngine(cfg, jsrun.WithSink(sink))
	if err != nil {
		return err
	}
	defer engine.Shutdown()

	fmt.Fprintf(out, "jsrun %s (%s backend)\n", version, engine.Backend())
	fmt.Fprintf(out, "Type /help for commands, /quit to exit\n\n")

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "\033[36mjs>\033[0m ",
		HistoryFile:     filepath.Join(os.TempDir(), "jsrun_history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("readline: %w", err)
	}
	defer rl.Close()

	// Ctrl+C cancels the running script, not the prompt.
	var running runningScript
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		for range sigCh {
			running.interrupt()
		}
	}()

	lang := jsrun.LangJS
	for {
		input, err := rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt || err == io.EOF {
				fmt.Fprintln(out, "\nGoodbye!")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}

		if strings.HasPrefix(input, "/") {
			quit, next := handleCommand(out, input, lang)
			if quit {
				return nil
			}
			lang = next
			rl.SetPrompt(fmt.Sprintf("\033[36m%s>\033[0m ", lang))
			continue
		}

		ctx, cancel := context.WithCancel(context.Background())
		running.set(cancel)
		o := engine.ExecuteLang(ctx, lang, input)
		running.set(nil)
		cancel()

		if o.OK() {
			fmt.Fprintln(out, o.Body())
		} else {
			fmt.Fprintf(out, "\033[31m%s\033[0m\n", o.Body())
		}
	}
}

// handleCommand runs a slash command and reports whether to quit and the
// language for following lines.
func handleCommand(out io.Writer, input string, lang jsrun.Lang) (bool, jsrun.Lang) {
	fields := strings.Fields(input)
	switch strings.ToLower(fields[0]) {
	case "/quit", "/exit", "/q":
		fmt.Fprintln(out, "Goodbye!")
		return true, lang
	case "/lang":
		if len(fields) < 2 {
			fmt.Fprintf(out, "language: %s\n", lang)
			return false, lang
		}
		next, err := jsrun.ParseLang(fields[1])
		if err != nil {
			fmt.Fprintln(out, err)
			return false, lang
		}
		return false, next
	case "/help":
		fmt.Fprintln(out, "Commands:")
		fmt.Fprintln(out, "  /help       - Show this help")
		fmt.Fprintln(out, "  /lang js|ts - Switch source language")
		fmt.Fprintln(out, "  /quit       - Exit")
	default:
		fmt.Fprintf(out, "Unknown command: %s (try /help)\n", input)
	}
	return false, lang
}

// runningScript holds the cancel func of the script in flight. The signal
// goroutine and the prompt loop both touch it.
type runningScript struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (r *runningScript) set(cancel context.CancelFunc) {
	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()
}

func (r *runningScript) interrupt() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
	}
}
