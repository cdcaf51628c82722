// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-ingest/internal/analyze"
	"github.com/pdiddy/paper-ingest/internal/ledger"
	"github.com/pdiddy/paper-ingest/internal/pipeline"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

var batchCmd = &cobra.Command{
	Use:   "batch <folder>",
	Short: "Ingest every PDF in a folder",
	Long: `Batch runs the pipeline over every PDF in a folder. Successfully
ingested files (and duplicates) move to the folder's processed/ subfolder;
failures stay in place and are reported at the end.

With a ledger configured, papers that were already ingested in a previous
run are skipped by content hash, so re-running a folder is cheap.`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().Bool("recursive", false, "descend into subfolders")
	batchCmd.Flags().String("source", "", `catalog Source label for every paper in the folder (default "Self-found")`)

	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	cfg, log, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	recursive, _ := cmd.Flags().GetBool("recursive")
	source, _ := cmd.Flags().GetString("source")

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

	summary, err := p.ProcessFolder(ctx, args[0], recursive, source, led)
	if err != nil {
		return err
	}
	if summary.HasFailures() {
		return fmt.Errorf("%d paper(s) failed", summary.Failed)
	}
	return nil
}

// openLedger opens the configured ledger, or returns nil when no ledger
// path is set.
func openLedger(cfg *types.PipelineConfig) (*ledger.Ledger, error) {
	if cfg.Batch.LedgerPath == "" {
		return nil, nil
	}
	return ledger.Open(cfg.Batch.LedgerPath)
}
