// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/paper-ingest/internal/acquire"
	"github.com/pdiddy/paper-ingest/internal/analyze"
	"github.com/pdiddy/paper-ingest/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process [identifier]",
	Short: "Ingest a single paper from a PDF, URL, or DOI",
	Long: `Process runs one paper through the full pipeline: acquire the PDF,
extract its text, check the catalog for a duplicate, analyze it, and write
the catalog record.

The paper can be given as a flag (--pdf, --url, --doi) or as a bare
argument, in which case its kind is inferred.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProcess,
}

func init() {
	processCmd.Flags().String("pdf", "", "path to a local PDF file")
	processCmd.Flags().String("url", "", "direct URL to a PDF")
	processCmd.Flags().String("doi", "", "DOI to resolve to an open-access PDF")
	processCmd.Flags().String("source", "", `catalog Source label, e.g. "PI Recommendation" (default "Self-found")`)

	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	input, err := inputFromFlags(cmd, args)
	if err != nil {
		return err
	}

	cfg, log, err := buildConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend := &analyze.ClaudeBackend{
		APIKey: cfg.Analysis.APIKey,
		Model:  cfg.Analysis.Model,
		Client: &http.Client{Timeout: cfg.HTTP.Timeout},
	}
	p := pipeline.New(cfg, backend, log, os.Stdout)

	if _, err := p.Process(ctx, input); err != nil {
		return err
	}
	return nil
}

// inputFromFlags merges the explicit flags and the optional bare argument
// into one pipeline input, rejecting ambiguous combinations.
func inputFromFlags(cmd *cobra.Command, args []string) (pipeline.Input, error) {
	pdf, _ := cmd.Flags().GetString("pdf")
	url, _ := cmd.Flags().GetString("url")
	doi, _ := cmd.Flags().GetString("doi")
	source, _ := cmd.Flags().GetString("source")

	if len(args) == 1 {
		if pdf != "" || url != "" || doi != "" {
			return pipeline.Input{}, fmt.Errorf("give either a bare identifier or one of --pdf/--url/--doi, not both")
		}
		arg := args[0]
		switch {
		case acquire.IsURL(arg):
			url = arg
		case fileExists(arg):
			pdf = arg
		default:
			doi = arg
		}
	}

	set := 0
	for _, v := range []string{pdf, url, doi} {
		if v != "" {
			set++
		}
	}
	if set == 0 {
		return pipeline.Input{}, fmt.Errorf("provide a paper: --pdf, --url, --doi, or a bare identifier")
	}
	if set > 1 {
		return pipeline.Input{}, fmt.Errorf("provide exactly one of --pdf, --url, or --doi")
	}

	return pipeline.Input{PDFPath: pdf, URL: url, DOI: doi, SourceLabel: source}, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
