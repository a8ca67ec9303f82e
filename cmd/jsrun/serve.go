package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/cryguy/jsrun/internal/history"
	"github.com/cryguy/jsrun/internal/server"
)

var addrFlag string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the jsrun HTTP server",
	Long: `Start the HTTP server.

GET / serves the instructions page, POST /run executes the request body as
a script and GET /ws accepts one script per websocket message. With history
enabled, GET /runs lists recent executions.

Examples:
  jsrun serve
  jsrun serve --addr 127.0.0.1:8080`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&addrFlag, "addr", "", "Address to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if addrFlag != "" {
		cfg.Server.Addr = addrFlag
	}

	engine, err := startEngine(cfg)
	if err != nil {
		// Nothing can run without a working platform.
		log.Fatalf("jsrun: %v", err)
	}
	defer engine.Shutdown()

	var store *history.Store
	if cfg.History.Enabled {
		store, err = history.Open(cfg.History.DBPath)
		if err != nil {
			return fmt.Errorf("opening history: %w", err)
		}
		defer store.Close()
		log.Printf("jsrun: recording runs to %s", cfg.History.DBPath)
	}

	srv := server.New(cfg, engine, store)

	// Graceful shutdown on SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		if err := srv.Shutdown(context.Background()); err != nil {
			log.Printf("jsrun: shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
