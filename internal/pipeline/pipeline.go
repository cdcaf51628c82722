// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline runs one paper end to end: acquire a PDF, extract its
// text, skip it if the catalog already has it, analyse it, and write the
// catalog record.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/rs/zerolog"

	"github.com/pdiddy/paper-ingest/internal/acquire"
	"github.com/pdiddy/paper-ingest/internal/analyze"
	"github.com/pdiddy/paper-ingest/internal/catalog"
	"github.com/pdiddy/paper-ingest/internal/extract"
	"github.com/pdiddy/paper-ingest/pkg/types"
)

// Outcome classifies a successful run. Duplicate skips count as success:
// the paper is in the catalog either way.
type Outcome string

const (
	OutcomeCreated   Outcome = "created"
	OutcomeDuplicate Outcome = "duplicate"
)

// defaultSourceLabel is the catalog Source select used when the operator
// gave none.
const defaultSourceLabel = "Self-found"

// Input identifies one paper to ingest. Exactly one of PDFPath, URL, or
// DOI is set.
type Input struct {
	PDFPath string
	URL     string
	DOI     string

	// SourceLabel is the catalog Source select value (for example
	// "PI Recommendation"); empty means "Self-found".
	SourceLabel string
}

// Result reports what one run did.
type Result struct {
	Outcome  Outcome
	RecordID string
	Title    string
	// LocalPath is the PDF the pipeline read, for callers that archive
	// processed files.
	LocalPath string
}

// catalogClient is the slice of the catalog API the pipeline needs.
type catalogClient interface {
	FindExisting(ctx context.Context, title string) (string, bool)
	CreateRecord(ctx context.Context, analysis *types.Analysis, source, pdfRef string) (string, error)
}

// Pipeline wires the stages together.
type Pipeline struct {
	cfg        *types.PipelineConfig
	extractor  *extract.Extractor
	analyzer   *analyze.Analyzer
	catalog    catalogClient
	httpClient *http.Client
	log        zerolog.Logger
	out        io.Writer
}

// New builds a Pipeline from the configuration. out receives operator
// progress lines; pass io.Discard to silence them.
func New(cfg *types.PipelineConfig, backend analyze.Backend, log zerolog.Logger, out io.Writer) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		extractor:  extract.New(),
		analyzer:   analyze.New(backend, &cfg.Analysis, log),
		catalog:    catalog.NewClient(&cfg.Catalog, log),
		httpClient: &http.Client{Timeout: cfg.Acquisition.Timeout},
		log:        log,
		out:        out,
	}
}

// Process runs the pipeline for one input. Temp files fetched during
// acquisition are removed before it returns, on every path.
func (p *Pipeline) Process(ctx context.Context, input Input) (*Result, error) {
	localPath, pdfRef, temp, err := p.acquireInput(ctx, input)
	if err != nil {
		return nil, err
	}
	if temp {
		defer os.Remove(localPath)
	}

	source := input.SourceLabel
	if source == "" {
		source = defaultSourceLabel
	}

	fmt.Fprintf(p.out, "Extracting text from %s...\n", localPath)
	doc, err := p.extractor.Extract(localPath)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", localPath, err)
	}
	p.log.Info().Str("title", doc.Title).Int("pages", doc.PageCount).Msg("text extracted")

	if doc.Title != "" {
		if id, found := p.catalog.FindExisting(ctx, doc.Title); found {
			fmt.Fprintf(p.out, "Already in catalog (%s), skipping.\n", id)
			return &Result{Outcome: OutcomeDuplicate, RecordID: id, Title: doc.Title, LocalPath: localPath}, nil
		}
	}

	fmt.Fprintln(p.out, "Analyzing paper...")
	analysis, err := p.analyzer.Analyze(ctx, doc.FullText())
	if err != nil {
		return nil, fmt.Errorf("analyzing %s: %w", localPath, err)
	}
	fillFromDocument(analysis, doc)

	// The analysis title is usually better than the extracted one; check
	// it too before writing.
	if analysis.Title != doc.Title && analysis.Title != "" {
		if id, found := p.catalog.FindExisting(ctx, analysis.Title); found {
			fmt.Fprintf(p.out, "Already in catalog (%s), skipping.\n", id)
			return &Result{Outcome: OutcomeDuplicate, RecordID: id, Title: analysis.Title, LocalPath: localPath}, nil
		}
	}

	recordID, err := p.catalog.CreateRecord(ctx, analysis, source, pdfRef)
	if err != nil {
		return nil, fmt.Errorf("cataloging %s: %w", localPath, err)
	}
	fmt.Fprintf(p.out, "Added to catalog: %s\n", analysis.Title)

	result := &Result{Outcome: OutcomeCreated, RecordID: recordID, Title: analysis.Title, LocalPath: localPath}
	if p.cfg.Batch.RecordsDir != "" {
		if err := writeRecord(p.cfg.Batch.RecordsDir, analysis, source, recordID); err != nil {
			p.log.Warn().Err(err).Msg("writing metadata record failed")
		}
	}
	return result, nil
}

// acquireInput turns the input into a readable local path. It returns the
// path, the PDF link to store in the catalog (empty for local files), and
// whether the path is a temp file the caller must remove.
func (p *Pipeline) acquireInput(ctx context.Context, input Input) (localPath, pdfRef string, temp bool, err error) {
	switch {
	case input.PDFPath != "":
		localPath = input.PDFPath

	case input.URL != "":
		pdfRef = input.URL
		fmt.Fprintf(p.out, "Downloading %s...\n", input.URL)
		localPath, err = acquire.Download(ctx, p.httpClient, input.URL, p.cfg.Acquisition)
		if err != nil {
			return "", "", false, err
		}
		temp = true

	case input.DOI != "":
		doi := acquire.NormalizeDOI(input.DOI)
		fmt.Fprintf(p.out, "Resolving DOI %s...\n", doi)
		var resolved acquire.Resolved
		resolved, err = acquire.ResolveDOI(ctx, p.httpClient, doi, p.cfg.Acquisition)
		if err != nil {
			return "", "", false, err
		}
		if resolved.Local {
			localPath = resolved.Location
		} else {
			pdfRef = resolved.Location
			fmt.Fprintf(p.out, "Downloading %s...\n", resolved.Location)
			localPath, err = acquire.Download(ctx, p.httpClient, resolved.Location, p.cfg.Acquisition)
			if err != nil {
				return "", "", false, err
			}
		}
		temp = true

	default:
		return "", "", false, fmt.Errorf("no input given: provide a PDF path, URL, or DOI")
	}

	return localPath, pdfRef, temp, nil
}

// fillFromDocument backfills analysis fields the model left empty with
// what extraction found.
func fillFromDocument(a *types.Analysis, doc *types.Document) {
	if a.Title == "" {
		a.Title = doc.Title
	}
	if a.Authors == "" {
		a.Authors = doc.Authors
	}
}
