// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-ingest/internal/analyze"
	"github.com/pdiddy/paper-ingest/internal/catalog"
	"github.com/pdiddy/paper-ingest/internal/logging"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify configuration, catalog access, and the analysis service",
	Long: `Check validates the configuration, then probes the catalog database
and the analysis service with live requests. Run it after changing
credentials to find problems before the first paper does.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	failed := 0
	report := func(name string, err error) {
		if err != nil {
			failed++
			fmt.Fprintf(os.Stdout, "FAIL  %s: %v\n", name, err)
			return
		}
		fmt.Fprintf(os.Stdout, "PASS  %s\n", name)
	}

	cfg, err := checkConfig(cmd)
	report("configuration", err)
	if err != nil {
		// Probes need credentials; nothing else can pass.
		return fmt.Errorf("%d check(s) failed", failed)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	log := logging.New("error")
	report("catalog database", catalog.NewClient(&cfg.Catalog, log).Ping(ctx))
	report("analysis service", probeBackend(ctx, cfg))

	if failed > 0 {
		return fmt.Errorf("%d check(s) failed", failed)
	}
	return nil
}

// checkConfig builds the configuration without the shared buildConfig
// error formatting, so the report line carries the validation detail.
func checkConfig(cmd *cobra.Command) (*types.PipelineConfig, error) {
	cfg, _, err := buildConfig(cmd)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// probeBackend sends a minimal prompt and checks for any text reply.
func probeBackend(ctx context.Context, cfg *types.PipelineConfig) error {
	backend := &analyze.ClaudeBackend{
		APIKey: cfg.Analysis.APIKey,
		Model:  cfg.Analysis.Model,
		Client: &http.Client{Timeout: cfg.HTTP.Timeout},
	}
	reply, err := backend.Generate(ctx, "Reply with the single word OK.")
	if err != nil {
		return err
	}
	if strings.TrimSpace(reply) == "" {
		return fmt.Errorf("empty reply")
	}
	return nil
}
