// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-ingest/internal/analyze"
	"github.com/pdiddy/paper-ingest/internal/pipeline"
)

var watchCmd = &cobra.Command{
	Use:   "watch <folder>",
	Short: "Keep ingesting PDFs as they arrive in a folder",
	Long: `Watch processes the folder once, then stays running and ingests new
PDFs as they appear, until interrupted. A periodic rescan backs up the
filesystem events, so papers are picked up even when an event is missed.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("source", "", `catalog Source label for every ingested paper (default "Self-found")`)

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	led, err := openLedger(cfg)
	if err != nil {
		return err
	}
	if led != nil {
		defer led.Close()
	}

	backend := &analyze.ClaudeBackend{
		APIKey: cfg.Analysis.APIKey,
		Model:  cfg.Analysis.Model,
		Client: &http.Client{Timeout: cfg.HTTP.Timeout},
	}
	p := pipeline.New(cfg, backend, log, os.Stdout)

	source, _ := cmd.Flags().GetString("source")
	err = p.Watch(ctx, args[0], source, led)
	if errors.Is(err, context.Canceled) {
		// Operator stop, not a failure.
		return nil
	}
	return err
}
